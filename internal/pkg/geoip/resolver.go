package geoip

// Resolver defines the interface for GeoIP lookups. A real implementation
// would sit on top of a MaxMind database; the service only depends on this
// interface.
type Resolver interface {
	Country(ip string) (string, error)
	City(ip string) (string, error)
}

// UnknownResolver is the default when no GeoIP database is configured.
// Every lookup answers "Unknown".
type UnknownResolver struct{}

func NewUnknownResolver() *UnknownResolver {
	return &UnknownResolver{}
}

func (r *UnknownResolver) Country(ip string) (string, error) {
	return "Unknown", nil
}

func (r *UnknownResolver) City(ip string) (string, error) {
	return "Unknown", nil
}
