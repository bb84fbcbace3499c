package config

import (
	"github.com/gaze-network/launchpad/internal/postgres"
	"github.com/gaze-network/launchpad/modules/launchpad/export"
)

type Config struct {
	Database      string          `mapstructure:"database"` // Database to store sales and their journal. e.g. `postgres` | `memory`
	Postgres      postgres.Config `mapstructure:"postgres"`
	Staking       Collaborator    `mapstructure:"staking"`
	Custody       Collaborator    `mapstructure:"custody"`
	LotteryPolicy string          `mapstructure:"lottery_policy"` // `accumulate` (default) | `redraw`
	Admins        []string        `mapstructure:"admins"`         // Addresses allowed to create sales. Empty allows anyone.
	Export        export.Config   `mapstructure:"export"`
	APIHandlers   []string        `mapstructure:"api_handlers"` // List of API handlers to enable. (e.g. `http`)
}

// Collaborator selects the backend of an external ledger.
type Collaborator struct {
	Driver  string            `mapstructure:"driver"` // `http` | `memory`
	BaseURL string            `mapstructure:"base_url"`
	Headers map[string]string `mapstructure:"headers"`
	Debug   bool              `mapstructure:"debug"`
}
