package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/mmeshcher/scissors/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var linkColumns = []string{
	"id", "key", "secret_key", "custom_key", "target_url", "is_active", "clicks", "user_id",
}

var userColumns = []string{"id", "email", "username", "hashed_password", "created_at"}

type PostgresRepository struct {
	pool   *pgxpool.Pool
	sb     squirrel.StatementBuilderType
	logger *zap.Logger
}

func NewPostgresRepository(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := runMigrations(dsn, logger); err != nil {
		return nil, fmt.Errorf("migrations failed: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("PostgreSQL repository initialized successfully")

	return &PostgresRepository{
		pool:   pool,
		sb:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		logger: logger,
	}, nil
}

func runMigrations(dsn string, logger *zap.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open database for migrations: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	logger.Info("Migrations applied successfully")
	return nil
}

func (p *PostgresRepository) KeyExists(ctx context.Context, key string) (bool, error) {
	return p.exists(ctx, "urls", squirrel.Eq{"key": key})
}

func (p *PostgresRepository) CustomKeyExists(ctx context.Context, customKey string) (bool, error) {
	return p.exists(ctx, "urls", squirrel.Eq{"custom_key": customKey})
}

func (p *PostgresRepository) UserExists(ctx context.Context, username, email string) (bool, error) {
	return p.exists(ctx, "users", squirrel.Or{
		squirrel.Eq{"username": username},
		squirrel.Eq{"email": email},
	})
}

func (p *PostgresRepository) exists(ctx context.Context, table string, pred squirrel.Sqlizer) (bool, error) {
	query, args, err := p.sb.
		Select("1").
		Prefix("SELECT EXISTS (").
		From(table).
		Where(pred).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists bool
	if err := p.pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("query row: %w", err)
	}

	return exists, nil
}

func (p *PostgresRepository) CreateLink(ctx context.Context, link *models.Link) error {
	query, args, err := p.sb.
		Insert("urls").
		Columns("key", "secret_key", "custom_key", "target_url", "user_id").
		Values(link.Key, link.SecretKey, nullable(link.CustomKey), link.TargetURL, link.UserID).
		Suffix("RETURNING id, is_active, clicks").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	err = p.pool.QueryRow(ctx, query, args...).Scan(&link.ID, &link.IsActive, &link.Clicks)
	if err != nil {
		return fmt.Errorf("insert link: %w", mapError(err))
	}

	return nil
}

func (p *PostgresRepository) GetLinkByKey(ctx context.Context, key string) (*models.Link, error) {
	return p.getLink(ctx, squirrel.Eq{"key": key, "is_active": true})
}

func (p *PostgresRepository) GetLinkBySecretKey(ctx context.Context, userID int64, secretKey string) (*models.Link, error) {
	return p.getLink(ctx, squirrel.Eq{"secret_key": secretKey, "user_id": userID})
}

func (p *PostgresRepository) GetLinkByCustomKey(ctx context.Context, userID int64, customKey string) (*models.Link, error) {
	return p.getLink(ctx, squirrel.Eq{"custom_key": customKey, "user_id": userID})
}

func (p *PostgresRepository) getLink(ctx context.Context, pred squirrel.Eq) (*models.Link, error) {
	query, args, err := p.sb.
		Select(linkColumns...).
		From("urls").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	link, err := scanLink(p.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	return link, nil
}

func (p *PostgresRepository) ListLinks(ctx context.Context, userID int64) ([]models.Link, error) {
	query, args, err := p.sb.
		Select(linkColumns...).
		From("urls").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	defer rows.Close()

	links := make([]models.Link, 0)
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, *link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return links, nil
}

func (p *PostgresRepository) SetLinkActive(ctx context.Context, userID int64, secretKey string, active bool) (*models.Link, error) {
	query, args, err := p.sb.
		Update("urls").
		Set("is_active", active).
		Where(squirrel.Eq{"secret_key": secretKey, "user_id": userID}).
		Suffix("RETURNING " + strings.Join(linkColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return scanLink(p.pool.QueryRow(ctx, query, args...))
}

func (p *PostgresRepository) RecordClick(ctx context.Context, key string, click models.Click) (*models.Link, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query, args, err := p.sb.
		Update("urls").
		Set("clicks", squirrel.Expr("clicks + 1")).
		Where(squirrel.Eq{"key": key, "is_active": true}).
		Suffix("RETURNING " + strings.Join(linkColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update query: %w", err)
	}

	link, err := scanLink(tx.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	query, args, err = p.sb.
		Insert("clicks").
		Columns("url_id", "timestamp", "ip_address").
		Values(link.ID, click.Timestamp, nullable(click.IPAddress)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert query: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("insert click: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return link, nil
}

func (p *PostgresRepository) ListClicks(ctx context.Context, linkID int64) ([]models.Click, error) {
	query, args, err := p.sb.
		Select("id", "url_id", "timestamp", "ip_address").
		From("clicks").
		Where(squirrel.Eq{"url_id": linkID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query clicks: %w", err)
	}
	defer rows.Close()

	clicks := make([]models.Click, 0)
	for rows.Next() {
		var (
			click     models.Click
			ipAddress *string
		)
		if err := rows.Scan(&click.ID, &click.URLID, &click.Timestamp, &ipAddress); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if ipAddress != nil {
			click.IPAddress = *ipAddress
		}
		clicks = append(clicks, click)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return clicks, nil
}

func (p *PostgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	query, args, err := p.sb.
		Insert("users").
		Columns("email", "username", "hashed_password").
		Values(user.Email, user.Username, user.HashedPassword).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if err := p.pool.QueryRow(ctx, query, args...).Scan(&user.ID, &user.CreatedAt); err != nil {
		return fmt.Errorf("insert user: %w", mapError(err))
	}

	return nil
}

func (p *PostgresRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query, args, err := p.sb.
		Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"username": username}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var user models.User
	err = p.pool.QueryRow(ctx, query, args...).
		Scan(&user.ID, &user.Email, &user.Username, &user.HashedPassword, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query row: %w", err)
	}

	return &user, nil
}

func (p *PostgresRepository) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresRepository) Close() error {
	p.pool.Close()
	return nil
}

func scanLink(row pgx.Row) (*models.Link, error) {
	var (
		link      models.Link
		customKey *string
	)

	err := row.Scan(&link.ID, &link.Key, &link.SecretKey, &customKey,
		&link.TargetURL, &link.IsActive, &link.Clicks, &link.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan link: %w", err)
	}

	if customKey != nil {
		link.CustomKey = *customKey
	}

	return &link, nil
}

// mapError turns unique violations into ErrConflict.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	}
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
