package mempool

// DefaultBlockSize is the byte budget of one ObjectPool block.
const DefaultBlockSize = 4096

// Configuration keys read by OptionsFromConfig.
const (
	ConfigKeyBlockSize     = "mempool.block_size"
	ConfigKeyInitialBlocks = "mempool.initial_blocks"
	ConfigKeyMaxBlocks     = "mempool.max_blocks"
)

// Option configures an ObjectPool.
type Option func(*poolConfig)

type poolConfig struct {
	blockSize     int
	initialBlocks int
	maxBlocks     int
}

// WithBlockSize sets how many bytes each block covers. A block always holds
// at least one slot, even when T is larger than the budget.
// Defaults to DefaultBlockSize.
func WithBlockSize(bytes int) Option {
	return func(cfg *poolConfig) {
		cfg.blockSize = bytes
	}
}

// WithInitialBlocks sets how many blocks are allocated up front. Values below
// 1 are raised to 1.
func WithInitialBlocks(n int) Option {
	return func(cfg *poolConfig) {
		cfg.initialBlocks = n
	}
}

// WithMaxBlocks caps the number of blocks the pool may ever hold. Once the cap
// is reached, Allocate fails with ErrOutOfMemory. 0 means unlimited.
func WithMaxBlocks(n int) Option {
	return func(cfg *poolConfig) {
		if n >= 0 {
			cfg.maxBlocks = n
		}
	}
}

// IntGetter is the slice of a configuration store the pool needs.
// *config.Store satisfies it.
type IntGetter interface {
	GetInt(key string, def int) int
}

// OptionsFromConfig reads block settings from c. Missing or mistyped keys
// keep the defaults.
func OptionsFromConfig(c IntGetter) []Option {
	if c == nil {
		return nil
	}
	return []Option{
		WithBlockSize(c.GetInt(ConfigKeyBlockSize, DefaultBlockSize)),
		WithInitialBlocks(c.GetInt(ConfigKeyInitialBlocks, 1)),
		WithMaxBlocks(c.GetInt(ConfigKeyMaxBlocks, 0)),
	}
}

func createConfig(opts ...Option) *poolConfig {
	cfg := &poolConfig{
		blockSize:     DefaultBlockSize,
		initialBlocks: 1,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.initialBlocks < 1 {
		cfg.initialBlocks = 1
	}

	return cfg
}
