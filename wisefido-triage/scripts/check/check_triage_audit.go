package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	commoncfg "owlback/owl-common/config"
	"owlback/owl-common/database"
	"owlback/wisefido-triage/internal/domain"
	"owlback/wisefido-triage/internal/repository"
)

// 检查 triage_invocations 审计表：按操作/结果汇总，并列出最近的失败调用
func main() {
	cfg := &commoncfg.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "owlrd",
		SSLMode:  "disable",
	}
	cfg.LoadFromEnv("DB")

	db, err := database.NewPostgresDB(cfg, 5*time.Second)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	line := strings.Repeat("=", 80)

	fmt.Println(line)
	fmt.Println("1. 按操作和结果汇总")
	fmt.Println(line)
	rows, err := db.QueryContext(ctx, `
		SELECT operation, outcome, COALESCE(error_kind, ''), COUNT(*), MAX(duration_ms)
		FROM triage_invocations
		GROUP BY operation, outcome, error_kind
		ORDER BY operation, outcome;
	`)
	if err != nil {
		log.Fatalf("Failed to query triage_invocations: %v", err)
	}
	defer rows.Close()

	fmt.Printf("%-10s %-10s %-12s %-8s %-10s\n", "operation", "outcome", "error_kind", "count", "max_ms")
	fmt.Println(strings.Repeat("-", 80))
	for rows.Next() {
		var op, outcome, kind string
		var count int
		var maxMs sql.NullInt64
		if err := rows.Scan(&op, &outcome, &kind, &count, &maxMs); err != nil {
			log.Printf("Failed to scan row: %v", err)
			continue
		}
		fmt.Printf("%-10s %-10s %-12s %-8d %-10d\n", op, outcome, kind, count, maxMs.Int64)
	}

	fmt.Println("\n" + line)
	fmt.Println("2. 最近的失败调用")
	fmt.Println(line)
	entries, err := repository.NewPostgresAuditRepo(db).ListRecent(ctx, repository.MaxListLimit)
	if err != nil {
		log.Fatalf("Failed to list invocations: %v", err)
	}
	var failed int
	for _, e := range entries {
		if e.Outcome != domain.OutcomeFailed {
			continue
		}
		fmt.Printf("%-20s %-36s %-8s %-10s %-10s exit=%d %dms\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.InvocationID, e.Operation, e.PatientID, e.ErrorKind, e.ExitCode, e.DurationMs)
		failed++
	}
	if failed == 0 {
		fmt.Println("最近没有失败的调用")
	} else {
		fmt.Printf("\n最近 %d 条记录中共 %d 条失败\n", len(entries), failed)
	}
}
