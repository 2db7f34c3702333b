package services

import "context"

// Sensor defines the interface for all gopsutil-backed sensors.
type Sensor interface {
	Name() string
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Collect(ctx context.Context) (any, error)
}

// Probe runs one Connect/Collect/Disconnect cycle per sensor and returns the
// failures keyed by sensor name. An empty map means every sensor answered.
func Probe(ctx context.Context, sensors ...Sensor) map[string]error {
	failed := make(map[string]error)
	for _, s := range sensors {
		if err := s.Connect(ctx); err != nil {
			failed[s.Name()] = err
			continue
		}
		if _, err := s.Collect(ctx); err != nil {
			failed[s.Name()] = err
		}
		s.Disconnect(ctx)
	}
	return failed
}
