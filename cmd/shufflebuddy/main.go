package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lbp0200/shufflebuddy/internal/config"
	"github.com/lbp0200/shufflebuddy/internal/logger"
	"github.com/lbp0200/shufflebuddy/shuffle"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logger.Logger.Error().Err(err).Msg("shufflebuddy failed")
		os.Exit(1)
	}
}

// run 解析参数，加载状态，抽取 n 个候选并逐行输出，最后保存状态
func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("shufflebuddy", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("SHUFFLEBUDDY_CONFIG"), "YAML config file")
	key := fs.String("key", "default", "bag key")
	count := fs.Int("n", 1, "number of draws")
	dryRun := fs.Bool("dry-run", false, "draw without saving state")
	backendName := fs.String("backend", "", "state backend: file, badger, redis, sqlite")
	stateFile := fs.String("state", "", "state file (file backend)")
	badgerDir := fs.String("badger-dir", "", "badger directory (badger backend)")
	sqlitePath := fs.String("sqlite", "", "sqlite database (sqlite backend)")
	redisAddr := fs.String("redis-addr", "", "redis address (redis backend)")
	snapshot := fs.String("snapshot", "", "snapshot name (badger, redis, sqlite backends)")
	compression := fs.String("compress", "", "compression for saved state: none, lz4, zstd")
	seed := fs.String("seed", "", "fixed random seed")
	logLevel := fs.String("log-level", "", "log level: DEBUG, INFO, WARNING, ERROR")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return err
	}

	// 只有显式设置的命令行参数才覆盖配置
	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Backend = *backendName
		case "state":
			cfg.StateFile = *stateFile
		case "badger-dir":
			cfg.BadgerDir = *badgerDir
		case "sqlite":
			cfg.SQLitePath = *sqlitePath
		case "redis-addr":
			cfg.RedisAddr = *redisAddr
		case "snapshot":
			cfg.SnapshotName = *snapshot
		case "compress":
			cfg.Compression = *compression
		case "log-level":
			cfg.LogLevel = *logLevel
		case "seed":
			v, err := strconv.ParseUint(*seed, 10, 64)
			if err != nil {
				flagErr = fmt.Errorf("-seed: %w", err)
				return
			}
			cfg.Seed = &v
		}
	})
	if flagErr != nil {
		return flagErr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if *count < 1 {
		return fmt.Errorf("-n must be positive, got %d", *count)
	}

	if cfg.LogFile != "" {
		logger.SetOutputFile(cfg.LogFile)
	}
	if cfg.LogLevel != "" {
		logger.SetLevelFromString(cfg.LogLevel)
	}

	candidates := fs.Args()
	if len(candidates) == 0 {
		candidates, err = readCandidates(stdin)
		if err != nil {
			return err
		}
	}

	compressionType, err := shuffle.ParseCompression(cfg.Compression)
	if err != nil {
		return err
	}
	opts := []shuffle.Option{
		shuffle.WithLogger(logger.Logger),
		shuffle.WithCompression(compressionType),
	}
	if cfg.Seed != nil {
		opts = append(opts, shuffle.WithSeed(*cfg.Seed))
	}
	store := shuffle.New(opts...)

	p, err := openPersistence(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.close(); err != nil {
			logger.Logger.Warn().Err(err).Msg("close state backend")
		}
	}()

	if err := p.load(store); err != nil {
		return err
	}

	w := bufio.NewWriter(stdout)
	for i := 0; i < *count; i++ {
		v, err := shuffle.Choice(store, *key, candidates)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, v)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	logger.Logger.Debug().
		Str("key", *key).
		Int("draws", *count).
		Int("remaining", store.Remaining(*key)).
		Msg("drew candidates")

	if *dryRun {
		return nil
	}
	return p.save(store)
}

// readCandidates 每行一个候选，忽略空行
func readCandidates(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read candidates: %w", err)
	}
	return out, nil
}
