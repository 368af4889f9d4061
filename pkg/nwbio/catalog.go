package nwbio

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// BlockRecord is the catalog entry of one recording block.
type BlockRecord struct {
	Block          string `db:"block"`
	Stimulus       string `db:"stimulus"`
	StimValuesPath string `db:"stim_values_path"`
	AudioPath      string `db:"audio_path"`
}

// ErrBlockNotFound is returned when the catalog has no entry for a block.
type ErrBlockNotFound struct {
	Block string
}

func (e *ErrBlockNotFound) Error() string {
	return fmt.Sprintf("block '%s' not found in catalog", e.Block)
}

type Catalog struct {
	db *sqlx.DB
}

const catalogSchema = `CREATE TABLE IF NOT EXISTS blocks (
	block VARCHAR(64) NOT NULL PRIMARY KEY,
	stimulus VARCHAR(64) NOT NULL,
	stim_values_path VARCHAR(255) NOT NULL DEFAULT '',
	audio_path VARCHAR(255) NOT NULL DEFAULT ''
)`

func ConnectToDatabase(user string, pass string, host string, dbname string) (*Catalog, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	return OpenCatalog("mysql", dbURI)
}

// OpenCatalog connects to a catalog using one of the registered drivers,
// "mysql" for the lab server or "sqlite" for an offline catalog file.
func OpenCatalog(driver string, dsn string) (*Catalog, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to %s catalog: %w", driver, err)
	}
	return &Catalog{db: db}, nil
}

// EnsureSchema creates the blocks table when it is missing.
func (c *Catalog) EnsureSchema() error {
	_, err := c.db.Exec(catalogSchema)
	return err
}

func (c *Catalog) AddBlock(record BlockRecord) error {
	_, err := c.db.NamedExec(`INSERT INTO blocks (block, stimulus, stim_values_path, audio_path)
		VALUES (:block, :stimulus, :stim_values_path, :audio_path)`, record)
	if err != nil {
		return fmt.Errorf("add block %s: %w", record.Block, err)
	}
	return nil
}

func (c *Catalog) LookupBlock(block string) (BlockRecord, error) {
	var record BlockRecord
	err := c.db.Get(&record, "SELECT block, stimulus, stim_values_path, audio_path FROM blocks WHERE block = ?", block)
	if errors.Is(err, sql.ErrNoRows) {
		return BlockRecord{}, &ErrBlockNotFound{Block: block}
	}
	if err != nil {
		return BlockRecord{}, fmt.Errorf("lookup block %s: %w", block, err)
	}
	return record, nil
}

// Blocks lists the catalog entries, restricted to one stimulus when stimulus
// is not empty.
func (c *Catalog) Blocks(stimulus string) ([]BlockRecord, error) {
	query := "SELECT block, stimulus, stim_values_path, audio_path FROM blocks"
	args := []interface{}{}
	if stimulus != "" {
		query += " WHERE stimulus = ?"
		args = append(args, stimulus)
	}
	query += " ORDER BY block"

	rows, err := c.db.Queryx(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]BlockRecord, 0)
	for rows.Next() {
		var record BlockRecord
		if err := rows.StructScan(&record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (c *Catalog) Close() error {
	return c.db.Close()
}
