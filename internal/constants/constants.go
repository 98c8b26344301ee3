package constants

import "time"

var CacheTTL = struct {
	PeoplePage time.Duration
}{
	PeoplePage: 30 * time.Minute,
}

var CacheKeys = struct {
	PeoplePagePrefix string
}{
	PeoplePagePrefix: "swapi:people:page:",
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MaxRetries   int
}{
	ReadyTimeout: 5 * time.Second,
	DialTimeout:  5 * time.Second,
	ReadTimeout:  3 * time.Second,
	WriteTimeout: 3 * time.Second,
	PoolSize:     10,
	MaxRetries:   3,
}

var RetryConfig = struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      time.Duration
}{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	Jitter:      250 * time.Millisecond,
}

var CircuitBreakerConfig = struct {
	FailureThreshold int
	ResetTimeout     time.Duration
	RateLimitTimeout time.Duration
}{
	FailureThreshold: 3,                // consecutive failures before OPEN
	ResetTimeout:     30 * time.Second, // default wait before HALF_OPEN
	RateLimitTimeout: 5 * time.Minute,  // used instead after a 429
}

var APIConfig = struct {
	SWAPIBaseURL string
	SWAPITimeout time.Duration
	PeoplePath   string
	ImageURLBase string
	UserAgent    string
	MaxBodyBytes int64
}{
	SWAPIBaseURL: "https://swapi.dev/api",
	SWAPITimeout: 10 * time.Second,
	PeoplePath:   "/people/",
	ImageURLBase: "https://raw.githubusercontent.com/breatheco-de/swapi-images/master/public/images/people/",
	UserAgent:    "cantina-go/1.0",
	MaxBodyBytes: 4 << 20,
}

var MusicConfig = struct {
	RestartDelay time.Duration
	StopTimeout  time.Duration
	TrackToken   string
}{
	RestartDelay: 500 * time.Millisecond,
	StopTimeout:  3 * time.Second,
	TrackToken:   "{track}",
}

var BridgeConfig = struct {
	WriteTimeout    time.Duration
	PongTimeout     time.Duration
	PingInterval    time.Duration
	SendBuffer      int
	MaxMessageBytes int64
	IntentWorkers   int
}{
	WriteTimeout:    10 * time.Second,
	PongTimeout:     60 * time.Second,
	PingInterval:    50 * time.Second,
	SendBuffer:      16,
	MaxMessageBytes: 4096,
	IntentWorkers:   4,
}
