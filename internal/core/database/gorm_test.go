package database

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	tests := []struct {
		name, in, user, pass, want string
	}{
		{
			name: "native dsn untouched",
			in:   "root:pw@tcp(127.0.0.1:3306)/charity?parseTime=true",
			want: "root:pw@tcp(127.0.0.1:3306)/charity?parseTime=true",
		},
		{
			name: "jdbc url",
			in:   "jdbc:mysql://db:3306/charity?useSSL=false&characterEncoding=utf8",
			user: "app", pass: "secret",
			want: "app:secret@tcp(db:3306)/charity?charset=utf8&parseTime=true&tls=false",
		},
		{
			name: "url with credentials",
			in:   "mysql://u:p@db:3306/charity",
			want: "u:p@tcp(db:3306)/charity?charset=utf8mb4&parseTime=true",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeMySQLDSN(tt.in, tt.user, tt.pass); got != tt.want {
				t.Fatalf("normalizeMySQLDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMaskDSN(t *testing.T) {
	tests := map[string]string{
		"root:pw@tcp(db:3306)/x":         "root:****@tcp(db:3306)/x",
		"postgres://app:pw@db:5432/x":    "postgres://app:****@db:5432/x",
		"file:charity.db?cache=shared":   "file:charity.db?cache=shared",
		"host=db user=app dbname=charity": "host=db user=app dbname=charity",
	}
	for in, want := range tests {
		if got := MaskDSN(in); got != want {
			t.Fatalf("MaskDSN(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), true},
		{"postgres", &pgconn.PgError{Code: "23505"}, true},
		{"postgres other", &pgconn.PgError{Code: "23503"}, false},
		{"mysql", &mysql.MySQLError{Number: 1062}, true},
		{"sqlite text", errors.New("UNIQUE constraint failed: users.username"), true},
		{"other", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDuplicateKey(tt.err); got != tt.want {
				t.Fatalf("IsDuplicateKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewGormSQLite(t *testing.T) {
	db, err := NewGorm(Opts{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "charity.db"),
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("NewGorm() error: %v", err)
	}
	var one int
	if err := db.Raw("SELECT 1").Scan(&one).Error; err != nil || one != 1 {
		t.Fatalf("SELECT 1 = %d, %v", one, err)
	}
}

func TestNewGormUnsupportedDriver(t *testing.T) {
	if _, err := NewGorm(Opts{Driver: "oracle"}); !errors.Is(err, ErrUnsupportedDriver) {
		t.Fatalf("NewGorm() error = %v, want ErrUnsupportedDriver", err)
	}
}
