// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics exposes Prometheus counters for rounds, votes and
// notification delivery. Collectors are registered on the default registry
// and served by Handler at GET /metrics.
package metrics
