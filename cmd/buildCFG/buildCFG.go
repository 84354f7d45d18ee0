package buildCFG

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"
	"golang.org/x/crypto/bcrypt"

	"cafeDesk/internal/mailer"
	"cafeDesk/internal/rabbit"
	"cafeDesk/internal/session"
)

// Source is the part of *config.Config the builders read from.
type Source interface {
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
}

type ServerConfig struct {
	Port string
	Mode string
}

type RabbitConfig struct {
	rabbit.Config
	ReminderDelay time.Duration
}

type StorageConfig struct {
	Dir           string
	Bucket        string
	PublicBaseURL string
}

type AdminConfig struct {
	PasswordHash string
	SessionTTL   time.Duration
	SecureCookie bool
}

// maxReminderDelay is the largest x-delay the delayed exchange accepts: a
// signed 32-bit count of milliseconds.
const maxReminderDelay = time.Duration(math.MaxInt32) * time.Millisecond

func BuildServerConfig(cfg Source, log *zerolog.Logger) ServerConfig {
	sc := ServerConfig{
		Port: cfg.GetString("server.port"),
		Mode: cfg.GetString("server.mode"),
	}
	if sc.Port == "" {
		sc.Port = "8080"
		log.Warn().Str("port", sc.Port).Msg("server.port not set, using default")
	}
	if sc.Mode == "" {
		sc.Mode = "release"
	}
	return sc
}

func BuildDBConfig(cfg Source, log *zerolog.Logger) (string, []string, *dbpg.Options, error) {
	masterDSN := cfg.GetString("postgres.master_dsn")
	if masterDSN == "" {
		return "", nil, nil, errors.New("postgres.master_dsn is required")
	}

	var slaveDSNs []string
	for _, dsn := range strings.Split(cfg.GetString("postgres.slave_dsns"), ",") {
		if dsn = strings.TrimSpace(dsn); dsn != "" {
			slaveDSNs = append(slaveDSNs, dsn)
		}
	}

	opts := &dbpg.Options{
		MaxOpenConns:    intOr(cfg, "postgres.max_open_conns", 10),
		MaxIdleConns:    intOr(cfg, "postgres.max_idle_conns", 5),
		ConnMaxLifetime: time.Duration(intOr(cfg, "postgres.conn_max_lifetime_minutes", 30)) * time.Minute,
	}

	log.Info().
		Int("slaves", len(slaveDSNs)).
		Int("max_open_conns", opts.MaxOpenConns).
		Msg("database config loaded")
	return masterDSN, slaveDSNs, opts, nil
}

// BuildMigrationsPath returns the directory holding the SQL migrations.
func BuildMigrationsPath(cfg Source) string {
	if p := cfg.GetString("migrations.path"); p != "" {
		return p
	}
	return "migrations/postgres"
}

func BuildRabbitConfig(cfg Source, log *zerolog.Logger) (RabbitConfig, error) {
	rc := RabbitConfig{
		Config: rabbit.Config{
			URL:      cfg.GetString("rabbitmq.url"),
			Exchange: cfg.GetString("rabbitmq.exchange"),
			Queue:    cfg.GetString("rabbitmq.queue"),
		},
		ReminderDelay: time.Duration(intOr(cfg, "rabbitmq.reminder_delay_minutes", 24*60)) * time.Minute,
	}
	if rc.URL == "" {
		return rc, errors.New("rabbitmq.url is required")
	}
	if rc.ReminderDelay > maxReminderDelay {
		log.Warn().Dur("requested", rc.ReminderDelay).Dur("max", maxReminderDelay).Msg("reminder delay too long, capping")
		rc.ReminderDelay = maxReminderDelay
	}
	if rc.Exchange == "" {
		rc.Exchange = "registration_notices"
	}
	if rc.Queue == "" {
		rc.Queue = "registration_notices"
	}
	log.Info().Str("exchange", rc.Exchange).Str("queue", rc.Queue).Dur("reminder_delay", rc.ReminderDelay).Msg("rabbitmq config loaded")
	return rc, nil
}

func BuildRedisConfig(cfg Source, log *zerolog.Logger) (session.RedisConfig, error) {
	rc := session.RedisConfig{
		Addr:     cfg.GetString("redis.addr"),
		Password: cfg.GetString("redis.password"),
		DB:       cfg.GetInt("redis.db"),
	}
	if rc.Addr == "" {
		return rc, errors.New("redis.addr is required")
	}
	log.Info().Str("addr", rc.Addr).Int("db", rc.DB).Msg("redis config loaded")
	return rc, nil
}

func BuildStorageConfig(cfg Source, log *zerolog.Logger) (StorageConfig, error) {
	sc := StorageConfig{
		Dir:           cfg.GetString("storage.dir"),
		Bucket:        cfg.GetString("storage.bucket"),
		PublicBaseURL: strings.TrimRight(cfg.GetString("storage.public_base_url"), "/"),
	}
	if sc.Dir == "" {
		sc.Dir = "data/storage"
	}
	if sc.Bucket == "" {
		sc.Bucket = "payment-screenshots"
	}
	if strings.ContainsAny(sc.Bucket, `/\`) {
		return sc, fmt.Errorf("storage.bucket %q must be a plain name", sc.Bucket)
	}
	log.Info().Str("dir", sc.Dir).Str("bucket", sc.Bucket).Msg("storage config loaded")
	return sc, nil
}

func BuildSMTPConfig(cfg Source, log *zerolog.Logger) (mailer.Config, error) {
	mc := mailer.Config{
		Host:     cfg.GetString("smtp.host"),
		Port:     intOr(cfg, "smtp.port", 587),
		Username: cfg.GetString("smtp.username"),
		Password: cfg.GetString("smtp.password"),
		From:     cfg.GetString("smtp.from"),
	}
	if mc.Host == "" {
		log.Warn().Msg("smtp.host not set, emails will be skipped")
		return mc, nil
	}
	if mc.From == "" {
		return mc, errors.New("smtp.from is required when smtp.host is set")
	}
	return mc, nil
}

func BuildAdminConfig(cfg Source, log *zerolog.Logger) (AdminConfig, error) {
	ac := AdminConfig{
		PasswordHash: cfg.GetString("admin.password_hash"),
		SessionTTL:   time.Duration(intOr(cfg, "session.ttl_hours", 12)) * time.Hour,
		SecureCookie: cfg.GetBool("session.secure_cookie"),
	}
	if ac.PasswordHash == "" {
		return ac, errors.New("admin.password_hash is required")
	}
	if _, err := bcrypt.Cost([]byte(ac.PasswordHash)); err != nil {
		return ac, fmt.Errorf("admin.password_hash is not a bcrypt hash: %w", err)
	}
	log.Info().Dur("session_ttl", ac.SessionTTL).Msg("admin config loaded")
	return ac, nil
}

func intOr(cfg Source, key string, def int) int {
	if v := cfg.GetInt(key); v > 0 {
		return v
	}
	return def
}
