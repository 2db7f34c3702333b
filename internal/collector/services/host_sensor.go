package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/host"
)

type HostResult struct {
	Hostname      string        `json:"hostname"`
	OS            string        `json:"os"`
	Platform      string        `json:"platform"`
	KernelVersion string        `json:"kernel_version"`
	Uptime        time.Duration `json:"uptime"`
	Procs         uint64        `json:"procs"`
}

// Banner is the one-line host summary shown in headers.
func (h HostResult) Banner() string {
	if h.Hostname == "" {
		return "unknown host"
	}
	return fmt.Sprintf("%s (%s %s) up %s", h.Hostname, h.Platform, h.KernelVersion, h.Uptime.Truncate(time.Minute))
}

type HostSensor struct{}

func NewHostSensor() *HostSensor {
	return &HostSensor{}
}

func (s *HostSensor) Name() string {
	return "Host"
}

func (s *HostSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *HostSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *HostSensor) Collect(ctx context.Context) (any, error) {
	return s.Info(ctx)
}

func (s *HostSensor) Info(ctx context.Context) (HostResult, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return HostResult{}, fmt.Errorf("failed to get host info: %w", err)
	}

	return HostResult{
		Hostname:      info.Hostname,
		OS:            info.OS,
		Platform:      info.Platform,
		KernelVersion: info.KernelVersion,
		Uptime:        time.Duration(info.Uptime) * time.Second,
		Procs:         info.Procs,
	}, nil
}
