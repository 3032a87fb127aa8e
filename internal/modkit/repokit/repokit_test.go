package repokit

import (
	"context"
	"errors"
	"testing"

	"stylefix/internal/platform/store"
	"stylefix/internal/platform/testkit"
)

type q struct{ name string }

func (q) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (q) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (q) QueryRow(context.Context, string, ...any) store.Row             { return nil }

type txq struct {
	q
	opened int
}

func (t *txq) Tx(_ context.Context, fn func(store.RowQuerier) error) error {
	t.opened++
	return fn(q{name: "tx"})
}

type nameBinder struct{}

func (nameBinder) Bind(qq Queryer) string { return qq.(q).name }

func TestMustBind(t *testing.T) {
	if got := MustBind[string](nameBinder{}, q{name: "pool"}); got != "pool" {
		t.Fatalf("MustBind = %q", got)
	}
	testkit.MustPanic(t, func() { MustBind[string](nameBinder{}, nil) })
}

func TestWithTx(t *testing.T) {
	tx := &txq{}
	var seen string
	err := WithTx(context.Background(), tx, func(qq Queryer) error {
		seen = qq.(q).name
		return nil
	})
	if err != nil || tx.opened != 1 || seen != "tx" {
		t.Fatalf("tx path: err=%v opened=%d seen=%q", err, tx.opened, seen)
	}

	boom := errors.New("boom")
	err = WithTx(context.Background(), q{name: "plain"}, func(qq Queryer) error {
		seen = qq.(q).name
		return boom
	})
	if !errors.Is(err, boom) || seen != "plain" {
		t.Fatalf("plain path: err=%v seen=%q", err, seen)
	}
}
