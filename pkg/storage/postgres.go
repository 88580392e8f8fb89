package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/iWorld-y/market_radar/pkg/config"
	"github.com/iWorld-y/market_radar/pkg/model"
	_ "github.com/lib/pq"
)

type Storage struct {
	db *sql.DB
}

func NewStorage(cfg config.DBConfig) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS research_reports (
			id SERIAL PRIMARY KEY,
			solution_id TEXT NOT NULL,
			summary TEXT,
			customer_voice TEXT,
			market_position TEXT,
			report JSONB NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS report_competitors (
			id SERIAL PRIMARY KEY,
			report_id INTEGER REFERENCES research_reports(id),
			name TEXT,
			description TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS report_trends (
			id SERIAL PRIMARY KEY,
			report_id INTEGER REFERENCES research_reports(id),
			trend TEXT,
			impact TEXT,
			summary TEXT
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query %s: %w", query, err)
		}
	}

	return nil
}

// SaveReport 持久化一次完整的调研报告，同时冗余存储 JSON 原文便于回放
func (s *Storage) SaveReport(report *model.ResearchModuleOutput) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var reportID int
	err = tx.QueryRow(`
		INSERT INTO research_reports (solution_id, summary, customer_voice, market_position, report)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		report.SolutionID, report.Summary, report.CustomerVoice,
		report.CompetitiveAnalysis.MarketPosition, raw).Scan(&reportID)
	if err != nil {
		return fmt.Errorf("failed to insert research report: %w", err)
	}

	for _, c := range report.CompetitiveAnalysis.Competitors {
		_, err = tx.Exec(`
			INSERT INTO report_competitors (report_id, name, description)
			VALUES ($1, $2, $3)`,
			reportID, c.Name, c.Description)
		if err != nil {
			return fmt.Errorf("failed to insert competitor: %w", err)
		}
	}

	for _, t := range report.IndustryTrends {
		_, err = tx.Exec(`
			INSERT INTO report_trends (report_id, trend, impact, summary)
			VALUES ($1, $2, $3, $4)`,
			reportID, t.Trend, t.Impact, t.Summary)
		if err != nil {
			return fmt.Errorf("failed to insert trend: %w", err)
		}
	}

	return tx.Commit()
}
