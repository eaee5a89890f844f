package verify

import (
	"context"
	"net"
	"time"
)

// Resolver is the DNS surface the verification checks need. LookupTXT is
// the alternate ownership primitive; the exposed add/verify flow only uses
// CNAME today.
type Resolver interface {
	LookupCNAME(ctx context.Context, host string) (string, error)
	LookupTXT(ctx context.Context, host string) ([]string, error)
}

// dnsTimeout bounds a single lookup so one slow resolver cannot stall a
// whole sweep.
const dnsTimeout = 3 * time.Second

type netResolver struct {
	r *net.Resolver
}

// NewNetResolver returns the production resolver backed by the system DNS.
func NewNetResolver() Resolver {
	return &netResolver{r: &net.Resolver{}}
}

func (n *netResolver) LookupCNAME(ctx context.Context, host string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, dnsTimeout)
	defer cancel()
	return n.r.LookupCNAME(ctx, host)
}

func (n *netResolver) LookupTXT(ctx context.Context, host string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, dnsTimeout)
	defer cancel()
	return n.r.LookupTXT(ctx, host)
}
