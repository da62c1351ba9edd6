package platform

// Token identifies a service registration in a Container. Tokens are opaque
// strings compared by exact value: two registrations refer to the same
// service if and only if their tokens are equal. The container attaches no
// meaning to the format, but by convention tokens are lowercase dotted paths
// ("cache.store", "database.handle") so log lines and error chains stay
// readable.
type Token string

// String returns the token's string form.
func (t Token) String() string { return string(t) }

// Well-known tokens wired by the platformd composition root. Modules declare
// the subset they consume via Module.Dependencies. Services outside this
// catalog may use any token; the constants exist so the binary and its
// modules cannot drift apart on spelling.
const (
	// TokenLogger is the platform's structured logger.
	TokenLogger Token = "platform.logger"

	// TokenConfig is the loaded application configuration.
	TokenConfig Token = "platform.config"

	// TokenEvents is the platform event broker.
	TokenEvents Token = "platform.events"

	// TokenCache is the cache store shared by modules.
	TokenCache Token = "cache.store"

	// TokenDatabase is the application database handle.
	TokenDatabase Token = "database.handle"

	// TokenChain is the provenance chain client.
	TokenChain Token = "chain.client"

	// TokenMetrics is the metrics registry scraped by the metrics module.
	TokenMetrics Token = "metrics.registry"

	// TokenAuthConfig carries token-issuing settings for the authn module.
	TokenAuthConfig Token = "authn.config"

	// TokenScheduler is the background job runner.
	TokenScheduler Token = "scheduler.runner"

	// TokenWatcher is the configuration file watcher.
	TokenWatcher Token = "config.watcher"
)
