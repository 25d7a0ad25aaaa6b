//go:build !linux

package provider

import (
	"context"
	"fmt"

	"github.com/Crypto90/nowplayingd/internal/domain"
	"go.uber.org/zap"
)

// MprisProvider stub for non-Linux platforms
type MprisProvider struct {
	logger *zap.Logger
}

// NewMprisProvider creates a stub provider that reports no sessions on
// platforms without MPRIS support
func NewMprisProvider(logger *zap.Logger, fetcher domain.Fetcher) *MprisProvider {
	logger.Warn("MPRIS session provider is only supported on Linux; no sessions will be reported")
	return &MprisProvider{logger: logger}
}

// CurrentSession always reports the absence of a session
func (p *MprisProvider) CurrentSession(ctx context.Context) (domain.Session, error) {
	return nil, fmt.Errorf("media session provider is only supported on Linux systems")
}

// Close is a no-op on non-Linux platforms
func (p *MprisProvider) Close() error {
	return nil
}
