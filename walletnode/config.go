package walletnode

import (
	"fmt"
)

type Config struct {
	BaseURL string `default:"http://127.0.0.1:58081/json_rpc" envconfig:"NODE_URL"`

	// Request timeout in milliseconds.
	Timeout int `default:"10000" envconfig:"NODE_TIMEOUT"`

	// Retry attempts when calls fail.
	MaxRetries int `default:"10" envconfig:"NODE_MAX_RETRIES"`
	RetryDelay int `default:"500" envconfig:"NODE_RETRY_DELAY"`
}

// String returns a custom string representation.
func (c Config) String() string {
	return fmt.Sprintf("{BaseURL:%v Timeout:%d ms MaxRetries:%d RetryDelay:%d ms}",
		c.BaseURL, c.Timeout, c.MaxRetries, c.RetryDelay)
}
