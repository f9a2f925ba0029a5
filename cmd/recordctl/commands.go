package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/enterprise-auth/appmodel/internal/model"
	"github.com/enterprise-auth/appmodel/internal/record"
	"github.com/enterprise-auth/appmodel/internal/service"
)

var (
	// errUsage means the command already printed its usage.
	errUsage = errors.New("usage error")
	// errReported means the command already explained the failure.
	errReported = errors.New("failure reported")
)

type command struct {
	name       string
	summary    string
	needsStore bool
	run        func(ctx context.Context, env *cmdEnv, args []string) error
}

var commands = map[string]command{}

func register(c command) {
	commands[c.name] = c
}

func init() {
	register(command{name: "kinds", summary: "list registered record kinds", run: runKinds})
	register(command{name: "schema", summary: "print the JSON schema of a kind", run: runSchema})
	register(command{name: "check", summary: "strictly decode a JSON file and print its hash", run: runCheck})
	register(command{name: "canon", summary: "decode a JSON file and re-encode it canonically", run: runCanon})
	register(command{name: "keygen", summary: "issue an API key", needsStore: true, run: runKeygen})
	register(command{name: "verify", summary: "verify an API key and record its use", needsStore: true, run: runVerify})
	register(command{name: "revoke", summary: "revoke an API key", needsStore: true, run: runRevoke})
	register(command{name: "put", summary: "store a record from a JSON file", needsStore: true, run: runPut})
	register(command{name: "get", summary: "print a stored record", needsStore: true, run: runGet})
	register(command{name: "list", summary: "print the most recently updated records of a kind", needsStore: true, run: runList})
	register(command{name: "delete", summary: "delete a stored record", needsStore: true, run: runDelete})
	register(command{name: "evict", summary: "drop every cached record of a kind", needsStore: true, run: runEvict})
}

func newFlagSet(env *cmdEnv, name, positional string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	fs.Usage = func() {
		fmt.Fprintf(env.stderr, "usage: recordctl %s [flags] %s\n", name, positional)
		fs.PrintDefaults()
	}
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

// parseKind validates a -kind flag value.
func parseKind(fs *flag.FlagSet, raw string) (model.Kind, error) {
	if raw == "" {
		fmt.Fprintln(fs.Output(), "-kind is required")
		fs.Usage()
		return "", errUsage
	}
	kind := model.Kind(raw)
	if !kind.IsKnown() {
		return "", fmt.Errorf("%w: %q (run recordctl kinds)", model.ErrUnknownKind, raw)
	}
	return kind, nil
}

func requireString(fs *flag.FlagSet, name, value string) error {
	if value == "" {
		fmt.Fprintf(fs.Output(), "-%s is required\n", name)
		fs.Usage()
		return errUsage
	}
	return nil
}

// readInput reads the single positional FILE argument; "-" reads stdin.
func readInput(fs *flag.FlagSet, env *cmdEnv) ([]byte, error) {
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errUsage
	}
	path := fs.Arg(0)
	if path == "-" {
		return io.ReadAll(env.stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// decodeInput decodes data as kind, printing format problems one per line.
func decodeInput(env *cmdEnv, kind model.Kind, data []byte) (any, error) {
	v, err := model.DecodeJSON(kind, data)
	if err == nil {
		return v, nil
	}

	var fe *record.FormatError
	if !errors.As(err, &fe) {
		return nil, err
	}
	fmt.Fprintf(env.stderr, "invalid %s:\n", kind)
	for _, p := range fe.Problems {
		fmt.Fprintf(env.stderr, "  - %s\n", p)
	}
	return nil, errReported
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runKinds(_ context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "kinds", "")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	for _, k := range model.Kinds() {
		fmt.Fprintln(env.stdout, k)
	}
	return nil
}

func runSchema(_ context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "schema", "")
	kindFlag := fs.String("kind", "", "record kind")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	kind, err := parseKind(fs, *kindFlag)
	if err != nil {
		return err
	}

	schema, err := model.Schema(kind)
	if err != nil {
		return err
	}
	return encodeJSON(env.stdout, schema)
}

func runCheck(_ context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "check", "FILE")
	kindFlag := fs.String("kind", "", "record kind")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	kind, err := parseKind(fs, *kindFlag)
	if err != nil {
		return err
	}
	data, err := readInput(fs, env)
	if err != nil {
		return err
	}

	v, err := decodeInput(env, kind, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "ok %s %016x\n", kind, record.Hash(v))
	return nil
}

func runCanon(_ context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "canon", "FILE")
	kindFlag := fs.String("kind", "", "record kind")
	pretty := fs.Bool("pretty", false, "indent the output")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	kind, err := parseKind(fs, *kindFlag)
	if err != nil {
		return err
	}
	data, err := readInput(fs, env)
	if err != nil {
		return err
	}

	v, err := decodeInput(env, kind, data)
	if err != nil {
		return err
	}
	if *pretty {
		return encodeJSON(env.stdout, v)
	}
	out, err := record.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(env.stdout, "%s\n", out)
	return err
}

func runKeygen(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "keygen", "")
	name := fs.String("name", "", "API key name")
	description := fs.String("description", "", "API key description")
	scopesInput := fs.String("scopes", "read", "comma-separated scopes")
	rateLimit := fs.Int("rate-limit", 0, "requests per hour (0 uses the default)")
	expiresIn := fs.Int("expires-in-days", 0, "days until expiry (0 never expires)")
	format := fs.String("format", "plain", "output format: plain or json")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireString(fs, "name", *name); err != nil {
		return err
	}
	if *format != "plain" && *format != "json" {
		fmt.Fprintln(env.stderr, "invalid format; use plain or json")
		return errUsage
	}

	scopes, err := parseScopes(*scopesInput)
	if err != nil {
		return err
	}

	req := model.CreateAPIKeyRequest{
		Name:      *name,
		Scopes:    scopes,
		RateLimit: *rateLimit,
	}
	if *description != "" {
		req.Description = description
	}
	if *expiresIn > 0 {
		req.ExpiresInDays = expiresIn
	}

	resp, err := env.keys.IssueKey(ctx, req, time.Now())
	if err != nil {
		return err
	}

	if *format == "json" {
		return encodeJSON(env.stdout, resp)
	}
	fmt.Fprintln(env.stdout, resp.Key)
	return nil
}

// parseScopes splits a comma-separated scope list. An empty list leaves
// the default to the issuer.
func parseScopes(input string) ([]model.APIKeyScope, error) {
	var scopes []model.APIKeyScope
	for _, part := range strings.Split(input, ",") {
		scope := model.APIKeyScope(strings.TrimSpace(part))
		if scope == "" {
			continue
		}
		if !scope.IsValid() {
			return nil, fmt.Errorf("invalid scope: %s", scope)
		}
		scopes = append(scopes, scope)
	}
	return scopes, nil
}

func runVerify(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "verify", "[KEY]")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var plaintext string
	switch fs.NArg() {
	case 0:
		line, err := bufio.NewReader(env.stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read key: %w", err)
		}
		plaintext = strings.TrimSpace(line)
	case 1:
		plaintext = fs.Arg(0)
	default:
		fs.Usage()
		return errUsage
	}

	key, err := env.keys.VerifyKey(ctx, plaintext, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidKey),
			errors.Is(err, service.ErrKeyInactive),
			errors.Is(err, service.ErrKeyExpired):
			fmt.Fprintln(env.stderr, "rejected:", err)
			return errReported
		}
		return errors.New(sanitizeError(err))
	}

	env.logger.Info("api key verified", "key_id", key.ID, "usage_count", key.UsageCount)
	return encodeJSON(env.stdout, key)
}

func runRevoke(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "revoke", "")
	id := fs.String("id", "", "API key id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireString(fs, "id", *id); err != nil {
		return err
	}

	key, err := env.keys.RevokeKey(ctx, *id, time.Now())
	if err != nil {
		return err
	}
	return encodeJSON(env.stdout, key)
}

func runPut(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "put", "FILE")
	kindFlag := fs.String("kind", "", "record kind")
	id := fs.String("id", "", "record id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	kind, err := parseKind(fs, *kindFlag)
	if err != nil {
		return err
	}
	if err := requireString(fs, "id", *id); err != nil {
		return err
	}
	data, err := readInput(fs, env)
	if err != nil {
		return err
	}

	v, err := decodeInput(env, kind, data)
	if err != nil {
		return err
	}
	meta, err := env.records.Put(ctx, *id, v)
	if err != nil {
		return err
	}

	env.logger.Info("record stored", "kind", meta.Kind, "id", meta.ID)
	fmt.Fprintf(env.stdout, "%s %s %016x %s\n", meta.Kind, meta.ID, meta.Hash, meta.UpdatedAt.Format(time.RFC3339))
	return nil
}

func runGet(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "get", "")
	kindFlag := fs.String("kind", "", "record kind")
	id := fs.String("id", "", "record id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	kind, err := parseKind(fs, *kindFlag)
	if err != nil {
		return err
	}
	if err := requireString(fs, "id", *id); err != nil {
		return err
	}

	v, err := env.records.Get(ctx, kind, *id)
	if err != nil {
		return err
	}
	return encodeJSON(env.stdout, v)
}

func runList(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "list", "")
	kindFlag := fs.String("kind", "", "record kind")
	limit := fs.Int("limit", 20, "maximum records to print")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	kind, err := parseKind(fs, *kindFlag)
	if err != nil {
		return err
	}

	vs, err := env.records.List(ctx, kind, *limit)
	if err != nil {
		return err
	}
	return encodeJSON(env.stdout, vs)
}

func runDelete(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "delete", "")
	kindFlag := fs.String("kind", "", "record kind")
	id := fs.String("id", "", "record id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	kind, err := parseKind(fs, *kindFlag)
	if err != nil {
		return err
	}
	if err := requireString(fs, "id", *id); err != nil {
		return err
	}

	if err := env.records.Delete(ctx, kind, *id); err != nil {
		return err
	}
	env.logger.Info("record deleted", "kind", kind, "id", *id)
	return nil
}

func runEvict(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "evict", "")
	kindFlag := fs.String("kind", "", "record kind")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	kind, err := parseKind(fs, *kindFlag)
	if err != nil {
		return err
	}
	if env.cache == nil {
		return errors.New("no cache configured (set REDIS_URL)")
	}

	n, err := env.cache.InvalidateKind(ctx, string(kind))
	if err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "evicted %d %s entries\n", n, kind)
	return nil
}
