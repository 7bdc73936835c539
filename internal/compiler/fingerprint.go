package compiler

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/browo097302/splink/internal/blocking"
)

// Domain prefixes for content-addressed identity. The version suffix
// enables future algorithm migration.
const (
	domainComparison   = "splink/comparison/v1"
	domainBlockingRule = "splink/blocking-rule/v1"
)

// hashWithDomain computes a SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// comparisonFingerprint computes the content-addressed identity of a
// compiled comparison. Two compilations with identical dialect, naming
// and branches fingerprint identically, so downstream caches can key on
// it across runs.
func comparisonFingerprint(c *CompiledComparison) (string, error) {
	payload := struct {
		Dialect          string          `json:"dialect"`
		OutputColumnName string          `json:"output_column_name"`
		Levels           []CompiledLevel `json:"levels"`
	}{
		Dialect:          c.Dialect,
		OutputColumnName: c.OutputColumnName,
		Levels:           c.Levels,
	}
	canonical, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("comparisonFingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(domainComparison, canonical), nil
}

// RuleFingerprint computes the content-addressed identity of a compiled
// blocking rule.
func RuleFingerprint(r blocking.Rule) (string, error) {
	payload := struct {
		Dialect         string `json:"dialect"`
		BlockingRuleSQL string `json:"blocking_rule_sql"`
	}{
		Dialect:         string(r.Dialect),
		BlockingRuleSQL: r.BlockingRuleSQL,
	}
	canonical, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("RuleFingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(domainBlockingRule, canonical), nil
}
