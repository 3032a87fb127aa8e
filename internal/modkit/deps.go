package modkit

import (
	"stylefix/internal/modkit/repokit"
	"stylefix/internal/platform/config"
	"stylefix/internal/platform/logger"
	"stylefix/internal/platform/store"
)

// Deps holds the shared dependencies every module constructor receives
// PG and CH are nil when the store is disabled
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}
