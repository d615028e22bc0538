package db

import (
	"database/sql"
	"fmt"

	"CrateFM/config"
	"CrateFM/logger"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var DB *sql.DB

// ConnectDB establishes a connection to the authoritative record store.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to the record store database")
	return nil
}

// InitDB initializes the database schema, creating tables if they don't exist.
func InitDB() error {
	if err := createAlbumsTable(); err != nil {
		return err
	}
	logger.Info("Database initialization completed")
	return nil
}

// createAlbumsTable creates the albums table. Array-valued fields
// (genres, styles, formats, images, tracklist, credits) are stored as
// JSON text, matching the upstream catalog service's record shape.
func createAlbumsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS albums (
		id BIGINT PRIMARY KEY,
		title VARCHAR(512) NOT NULL,
		artist VARCHAR(512) NOT NULL,
		year INT NOT NULL DEFAULT 0,
		role VARCHAR(64),
		type VARCHAR(64),
		genres TEXT,
		styles TEXT,
		formats TEXT,
		images TEXT,
		tracklist MEDIUMTEXT,
		track_count INT NOT NULL DEFAULT 0,
		credits MEDIUMTEXT,
		cover_image VARCHAR(1024),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_albums_created_at (created_at),
		INDEX idx_albums_title_artist (title(191), artist(191))
	);
	`
	if _, err := DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create albums table: %w", err)
	}
	return nil
}
