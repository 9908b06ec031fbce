package check_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/deliverkit/check"
)

func TestCheckDNS_SortsByPriority(t *testing.T) {
	r := check.NewResolverWithLookups(time.Second,
		func(_ context.Context, _ string) ([]*net.MX, error) {
			return []*net.MX{
				{Host: "backup.example.com.", Pref: 20},
				{Host: "primary.example.com.", Pref: 5},
				{Host: "second.example.com.", Pref: 10},
			}, nil
		}, nil, nil)

	res := r.CheckDNS(context.Background(), "example.com")
	assert.True(t, res.HasValidDNS)
	assert.Len(t, res.MXRecords, 3)
	assert.Equal(t, "primary.example.com", res.MXRecords[0].Exchange)
	assert.Equal(t, "second.example.com", res.MXRecords[1].Exchange)
	assert.Equal(t, "backup.example.com", res.MXRecords[2].Exchange)
}

func TestCheckDNS_StableTieBreak(t *testing.T) {
	r := check.NewResolverWithLookups(time.Second,
		func(_ context.Context, _ string) ([]*net.MX, error) {
			return []*net.MX{
				{Host: "a.example.com.", Pref: 10},
				{Host: "b.example.com.", Pref: 10},
				{Host: "c.example.com.", Pref: 10},
			}, nil
		}, nil, nil)

	res := r.CheckDNS(context.Background(), "example.com")
	assert.Equal(t, "a.example.com", res.MXRecords[0].Exchange)
	assert.Equal(t, "b.example.com", res.MXRecords[1].Exchange)
	assert.Equal(t, "c.example.com", res.MXRecords[2].Exchange)
}

func TestCheckDNS_ImplicitMXFallback(t *testing.T) {
	r := check.NewResolverWithLookups(time.Second,
		func(_ context.Context, _ string) ([]*net.MX, error) {
			return nil, errors.New("no such host")
		},
		func(_ context.Context, _ string) ([]string, error) {
			return []string{"203.0.113.7"}, nil
		}, nil)

	res := r.CheckDNS(context.Background(), "example.com")
	assert.True(t, res.HasValidDNS)
	assert.Len(t, res.MXRecords, 1)
	assert.Equal(t, "example.com", res.MXRecords[0].Exchange)
	assert.Equal(t, uint16(0), res.MXRecords[0].Priority)
}

func TestCheckDNS_NothingResolves(t *testing.T) {
	r := check.NewResolverWithLookups(time.Second,
		func(_ context.Context, _ string) ([]*net.MX, error) {
			return nil, errors.New("NXDOMAIN")
		},
		func(_ context.Context, _ string) ([]string, error) {
			return nil, errors.New("NXDOMAIN")
		}, nil)

	res := r.CheckDNS(context.Background(), "nonexistent-xyz.com")
	assert.False(t, res.HasValidDNS)
	assert.Empty(t, res.MXRecords)
}

func TestCheckDNS_EmptyMXListFallsBack(t *testing.T) {
	r := check.NewResolverWithLookups(time.Second,
		func(_ context.Context, _ string) ([]*net.MX, error) {
			return []*net.MX{}, nil
		},
		func(_ context.Context, _ string) ([]string, error) {
			return []string{"203.0.113.9"}, nil
		}, nil)

	res := r.CheckDNS(context.Background(), "example.com")
	assert.True(t, res.HasValidDNS)
	assert.Equal(t, "example.com", res.MXRecords[0].Exchange)
}

func TestCheckSPF(t *testing.T) {
	r := check.NewResolverWithLookups(time.Second, nil, nil,
		func(_ context.Context, name string) ([]string, error) {
			assert.Equal(t, "example.com", name)
			return []string{"some-verification=abc", "V=SPF1 include:_spf.example.com ~all"}, nil
		})
	assert.True(t, r.CheckSPF(context.Background(), "example.com"))

	r = check.NewResolverWithLookups(time.Second, nil, nil,
		func(_ context.Context, _ string) ([]string, error) {
			return []string{"unrelated"}, nil
		})
	assert.False(t, r.CheckSPF(context.Background(), "example.com"))

	r = check.NewResolverWithLookups(time.Second, nil, nil,
		func(_ context.Context, _ string) ([]string, error) {
			return nil, errors.New("SERVFAIL")
		})
	assert.False(t, r.CheckSPF(context.Background(), "example.com"))
}

func TestCheckDMARC(t *testing.T) {
	r := check.NewResolverWithLookups(time.Second, nil, nil,
		func(_ context.Context, name string) ([]string, error) {
			assert.Equal(t, "_dmarc.example.com", name)
			return []string{"v=DMARC1; p=reject"}, nil
		})
	assert.True(t, r.CheckDMARC(context.Background(), "example.com"))

	r = check.NewResolverWithLookups(time.Second, nil, nil,
		func(_ context.Context, _ string) ([]string, error) {
			return []string{}, nil
		})
	assert.False(t, r.CheckDMARC(context.Background(), "example.com"))
}
