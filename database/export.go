package database

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/so-sentiment/analyzer/database/data_model"
	"gorm.io/gorm"
)

// GetModel returns model value for given table name, nil if table name is not
// known.
func GetModel(tableName string) any {
	switch tableName {
	case data_model.Post{}.TableName():
		return &data_model.Post{}
	case data_model.Comment{}.TableName():
		return &data_model.Comment{}
	default:
		return nil
	}
}

type CsvConverter struct {
	WriteHeaders bool
	TimeFormat   string
	Delimiter    rune
	rows         *sql.Rows
}

func NewCsvConverter(rows *sql.Rows) *CsvConverter {
	return &CsvConverter{
		rows:         rows,
		WriteHeaders: true,
		TimeFormat:   time.RFC3339,
		Delimiter:    ',',
	}
}

func (c CsvConverter) WriteFile(csvFileName string) error {
	f, err := os.Create(csvFileName)
	if err != nil {
		return fmt.Errorf("failed to create CSV file %s: %s", csvFileName, err)
	}

	err = c.Write(f)
	if err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func (c CsvConverter) Write(writer io.Writer) error {
	rows := c.rows

	csvWriter := csv.NewWriter(writer)
	if c.Delimiter != '\x00' {
		csvWriter.Comma = c.Delimiter
	}

	columnNames, err := rows.Columns()
	if err != nil {
		return err
	}

	if c.WriteHeaders {
		if err = csvWriter.Write(columnNames); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	count := len(columnNames)
	values := make([]any, count)
	valuePtrs := make([]any, count)
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	row := make([]string, count)
	for rows.Next() {
		if err = rows.Scan(valuePtrs...); err != nil {
			return err
		}

		for i, rawValue := range values {
			switch value := rawValue.(type) {
			case nil:
				row[i] = ""
			case []byte:
				row[i] = string(value)
			case time.Time:
				if c.TimeFormat != "" {
					row[i] = value.Format(c.TimeFormat)
				} else {
					row[i] = value.String()
				}
			default:
				row[i] = fmt.Sprintf("%v", value)
			}
		}

		if err = csvWriter.Write(row); err != nil {
			return fmt.Errorf("failed to write data row to csv %w", err)
		}
	}

	csvWriter.Flush()
	if err = csvWriter.Error(); err != nil {
		return err
	}

	return rows.Err()
}

// ExportCSV dumps every row of given table into a CSV file.
func ExportCSV(db *gorm.DB, tableName string, csvFilePath string) error {
	model := GetModel(tableName)
	if model == nil {
		return fmt.Errorf("invalid table name %q", tableName)
	}

	rows, err := db.Model(model).Order("id").Rows()
	if err != nil {
		return fmt.Errorf("failed to make query to table %s: %s", tableName, err)
	}
	defer rows.Close()

	return NewCsvConverter(rows).WriteFile(csvFilePath)
}
