package jobs

import (
	"fmt"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/eco-ledger/internal/metrics"
)

// recoverJob перехватывает панику задачи, чтобы она не уронила процесс.
// Вызывается через defer.
func recoverJob(entry *log.Entry, m *metrics.LedgerMetrics, job string) {
	if r := recover(); r != nil {
		m.ObserveJobRun(job, "panic")
		entry.WithFields(log.Fields{
			"component": "panic_recovery",
			"panic":     fmt.Sprintf("%v", r),
			"stack":     string(debug.Stack()),
		}).Error("ПАНИКА в задаче, восстановлено")
	}
}
