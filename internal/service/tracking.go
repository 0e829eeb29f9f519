package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"github.com/bwmarrin/snowflake"
)

// TrackingNumberGenerator synthesizes tracking numbers for shipments that
// arrive without one, or whose number collides
type TrackingNumberGenerator interface {
	Generate(carrierName string) string
}

const (
	defaultTrackingPrefix = "SHP"
	trackingSuffixLen     = 4
	trackingAlphabet      = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// SnowflakeTracking produces numbers like "DHL-1A2B3C4D5E6F-X7Q2": a carrier
// prefix, a time-ordered snowflake id and a random suffix
type SnowflakeTracking struct {
	node *snowflake.Node
}

// NewSnowflakeTracking creates a generator for one node. Every running
// instance needs its own node id (0-1023).
func NewSnowflakeTracking(nodeID int64) (*SnowflakeTracking, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("tracking node %d: %w", nodeID, err)
	}
	return &SnowflakeTracking{node: node}, nil
}

func (g *SnowflakeTracking) Generate(carrierName string) string {
	id := strings.ToUpper(g.node.Generate().Base36())
	return carrierPrefix(carrierName) + "-" + id + "-" + randomSuffix(trackingSuffixLen)
}

// carrierPrefix is the first three letters of the carrier name
func carrierPrefix(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		if b.Len() == 3 {
			return b.String()
		}
	}
	return defaultTrackingPrefix
}

func randomSuffix(n int) string {
	out := make([]byte, n)
	max := big.NewInt(int64(len(trackingAlphabet)))
	for i := range out {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			// the snowflake part is still unique
			out[i] = trackingAlphabet[0]
			continue
		}
		out[i] = trackingAlphabet[v.Int64()]
	}
	return string(out)
}
