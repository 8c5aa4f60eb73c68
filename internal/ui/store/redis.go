package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/multiplica-sam/sam/internal/ui/client"
	"github.com/multiplica-sam/sam/internal/ui/dashboard"
)

const keyPrefix = "sam:"

// Redis implements Store on a redis server. Expiry is left to redis key ttls.
type Redis struct {
	client     *redis.Client
	sessionTTL time.Duration
	reportTTL  time.Duration
}

type Options struct {
	Address  string
	Password string
	DB       int
}

type Option func(*Options)

func WithAddress(addr string) Option {
	return func(o *Options) {
		o.Address = addr
	}
}

func WithPassword(pass string) Option {
	return func(o *Options) {
		o.Password = pass
	}
}

func WithDB(db int) Option {
	return func(o *Options) {
		o.DB = db
	}
}

// NewRedis connects to redis and checks the connection with a ping
func NewRedis(ctx context.Context, sessionTTL, reportTTL time.Duration, opts ...Option) (*Redis, error) {
	options := &Options{
		Address:  "localhost:6379",
		Password: "",
		DB:       0,
	}

	for _, opt := range opts {
		opt(options)
	}

	rc := redis.NewClient(&redis.Options{
		Addr:     options.Address,
		Password: options.Password,
		DB:       options.DB,
	})

	if _, err := rc.Ping(ctx).Result(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("redis ping %s: %w", options.Address, err)
	}

	return &Redis{client: rc, sessionTTL: sessionTTL, reportTTL: reportTTL}, nil
}

func pageKey(sessionID string) string {
	return keyPrefix + "page:" + sessionID
}

func reportKey(token string) string {
	return keyPrefix + "report:" + token
}

func (r *Redis) GetPage(ctx context.Context, sessionID string) (*dashboard.Page, error) {
	val, err := r.client.Get(ctx, pageKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get page: %w", err)
	}

	var page dashboard.Page
	if err := json.Unmarshal(val, &page); err != nil {
		return nil, fmt.Errorf("decoding stored page: %w", err)
	}
	return &page, nil
}

func (r *Redis) SavePage(ctx context.Context, sessionID string, page *dashboard.Page) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("encoding page: %w", err)
	}
	return r.client.Set(ctx, pageKey(sessionID), data, r.sessionTTL).Err()
}

func (r *Redis) PutReport(ctx context.Context, rep *client.Report) (string, error) {
	data, err := encodeReport(rep)
	if err != nil {
		return "", err
	}
	token := NewToken()
	if err := r.client.Set(ctx, reportKey(token), data, r.reportTTL).Err(); err != nil {
		return "", fmt.Errorf("redis set report: %w", err)
	}
	return token, nil
}

// TakeReport reads and deletes the report in one GETDEL so a token is served once across instances
func (r *Redis) TakeReport(ctx context.Context, token string) (*client.Report, error) {
	val, err := r.client.GetDel(ctx, reportKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis getdel report: %w", err)
	}
	return decodeReport(val)
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// storedReport is the redis representation of a report; Data is base64 encoded by encoding/json
type storedReport struct {
	ChurchID    int    `json:"id_igreja"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

func encodeReport(rep *client.Report) ([]byte, error) {
	if rep == nil {
		return nil, fmt.Errorf("report is nil")
	}
	return json.Marshal(storedReport{
		ChurchID:    rep.ChurchID,
		FileName:    rep.FileName,
		ContentType: rep.ContentType,
		Data:        rep.Data,
	})
}

func decodeReport(data []byte) (*client.Report, error) {
	var s storedReport
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding stored report: %w", err)
	}
	return &client.Report{
		ChurchID:    s.ChurchID,
		FileName:    s.FileName,
		ContentType: s.ContentType,
		Data:        s.Data,
	}, nil
}
