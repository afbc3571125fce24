package configlibsql

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

type Struct struct {
	File string `json:"file"`
	// remote libsql url, takes priority over File when set
	Url   string `json:"url"`
	Token string `json:"token"`
}

func (config Struct) OpenDB() (*sql.DB, error) {
	if config.Url != "" {
		url := config.Url
		if config.Token != "" {
			url = fmt.Sprintf("%s?authToken=%s", strings.TrimSuffix(url, "/"), config.Token)
		}
		return sql.Open("libsql", url)
	}

	if config.File == "" {
		return nil, fmt.Errorf("a database path was not specified")
	}

	_, statErr := os.Stat(config.File)
	if os.IsNotExist(statErr) {
		f, err := os.Create(config.File)
		if err != nil {
			return nil, err
		}
		f.Close()
	}

	db, err := sql.Open("sqlite", config.File)
	if err != nil {
		return nil, err
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	return db, nil
}
