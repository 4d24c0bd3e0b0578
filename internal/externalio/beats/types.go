package beats

import (
	"sync/atomic"
	"time"

	lumberjack "github.com/elastic/go-lumber/client/v2"
)

// Forwards accepted log lines to a Beats (Lumberjack v2) endpoint such as Logstash
type OutModule struct {
	Namespace []string
	endpoint  string
	sink      *lumberjack.SyncClient
	Metrics   MetricStorage
}

// One accepted message as it is forwarded
type Record struct {
	Timestamp     time.Time
	RemoteAddress string
	Filename      string
	Body          string
}

type MetricStorage struct {
	Sent   atomic.Uint64 // events acknowledged by the endpoint
	Failed atomic.Uint64 // send attempts that returned an error
}
