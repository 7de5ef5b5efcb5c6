// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package router

import (
	"fmt"
	"net"
	"net/netip"
	"strings"
)

// WithTrustedProxies lists the CIDR ranges whose forwarding headers are
// believed. Requests from other peers report their socket address as the
// client IP regardless of headers.
//
//	e := router.MustNew(router.WithTrustedProxies("10.0.0.0/8", "127.0.0.1/32"))
func WithTrustedProxies(cidrs ...string) Option {
	return func(c *config) { c.trustedProxies = append(c.trustedProxies, cidrs...) }
}

func parseProxies(cidrs []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(cidrs))
	for _, s := range cidrs {
		p, err := netip.ParsePrefix(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("router: invalid trusted proxy %q: %w", s, err)
		}
		out = append(out, p.Masked())
	}
	return out, nil
}

func trusted(prefixes []netip.Prefix, addr netip.Addr) bool {
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP returns the client address. When the peer is a trusted proxy,
// X-Forwarded-For is walked from the right and the first untrusted hop
// wins; X-Real-IP is consulted when that yields nothing.
func (c *Context) ClientIP() string {
	remote := c.Request.RemoteAddr
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = host
	}

	proxies := c.engine.proxies
	peer, err := netip.ParseAddr(remote)
	if err != nil || len(proxies) == 0 || !trusted(proxies, peer.Unmap()) {
		return remote
	}

	hops := strings.Split(c.Request.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			continue
		}
		if !trusted(proxies, addr.Unmap()) {
			return addr.String()
		}
	}
	if addr, err := netip.ParseAddr(strings.TrimSpace(c.Request.Header.Get("X-Real-IP"))); err == nil {
		return addr.String()
	}
	return remote
}
