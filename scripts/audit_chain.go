// +build ignore

// audit_chain.go — утилита для проверки хэш-цепочки журнала коммитов в PostgreSQL.
// Запуск: go run scripts/audit_chain.go [размер_страницы]
//
// Параметры подключения берутся из тех же переменных окружения (.env), что и у леджера.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"serotonyl.ru/eco-ledger/internal/config"
	"serotonyl.ru/eco-ledger/internal/db/postgres"
	"serotonyl.ru/eco-ledger/internal/store"
)

func main() {
	pageSize := 1000
	if len(os.Args) > 1 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil || n <= 0 {
			fmt.Println("Использование: go run scripts/audit_chain.go [размер_страницы]")
			os.Exit(1)
		}
		pageSize = n
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Ошибка конфигурации: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		fmt.Printf("Ошибка подключения: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	backend := postgres.NewBackend(pool)
	height, err := store.Audit(ctx, backend, pageSize)
	if err != nil {
		fmt.Printf("Журнал повреждён после высоты %d: %v\n", height, err)
		os.Exit(2)
	}

	head, err := backend.Head(ctx)
	if err != nil {
		fmt.Printf("Ошибка чтения головы: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Журнал цел: %d коммитов, голова %s\n", height, hex.EncodeToString(head.Digest))
}
