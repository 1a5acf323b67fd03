package types

import (
	"encoding/json"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

func validCertificate() *AttributionCertificate {
	return &AttributionCertificate{
		CertificateID:  "0fca43b5-a397-40ba-b916-1b1ea83bbf35",
		ModelID:        strings.Repeat("cd", 32),
		GenerationDate: "2024-05-01 12:31:00",
		Proof:          json.RawMessage(`{"proof":"0x1234","instances":[1,2]}`),
		Settings:       json.RawMessage(`{"run_args":{"tolerance":{"val":0.0}}}`),
		VK:             HexBytes{0xAA, 0xBB},
		Input: &InputDescriptor{
			CID:       "bafkreigh2akiscaildcqabsyg3dfr6chu3fgpregiymsck7e7aqa4s52zy",
			SizeBytes: 42,
		},
	}
}

func TestCertificateValidate(t *testing.T) {
	c := qt.New(t)

	c.Run("valid", func(c *qt.C) {
		c.Assert(validCertificate().Validate(), qt.IsNil)
	})

	c.Run("input optional", func(c *qt.C) {
		cert := validCertificate()
		cert.Input = nil
		c.Assert(cert.Validate(), qt.IsNil)
	})

	testCases := []struct {
		name   string
		mutate func(*AttributionCertificate)
		re     string
	}{
		{
			name:   "bad certificate id",
			mutate: func(a *AttributionCertificate) { a.CertificateID = "not-a-uuid" },
			re:     `invalid certificate id .*`,
		},
		{
			name:   "bad model id",
			mutate: func(a *AttributionCertificate) { a.ModelID = "1234" },
			re:     `invalid model id .*`,
		},
		{
			name:   "empty proof",
			mutate: func(a *AttributionCertificate) { a.Proof = nil },
			re:     `certificate proof is not valid JSON`,
		},
		{
			name:   "malformed proof",
			mutate: func(a *AttributionCertificate) { a.Proof = json.RawMessage(`{"proof":`) },
			re:     `certificate proof is not valid JSON`,
		},
		{
			name:   "empty settings",
			mutate: func(a *AttributionCertificate) { a.Settings = json.RawMessage{} },
			re:     `certificate settings are not valid JSON`,
		},
		{
			name:   "empty vk",
			mutate: func(a *AttributionCertificate) { a.VK = nil },
			re:     `certificate verification key is empty`,
		},
		{
			name:   "bad date",
			mutate: func(a *AttributionCertificate) { a.GenerationDate = "2024-05-01T12:31:00Z" },
			re:     `invalid generation date .*`,
		},
		{
			name:   "negative input size",
			mutate: func(a *AttributionCertificate) { a.Input.SizeBytes = -2 },
			re:     `invalid input size -2`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		c.Run(tc.name, func(c *qt.C) {
			cert := validCertificate()
			tc.mutate(cert)
			c.Assert(cert.Validate(), qt.ErrorMatches, tc.re)
		})
	}
}

func TestCertificateShortModelID(t *testing.T) {
	c := qt.New(t)

	cert := validCertificate()
	c.Assert(cert.ShortModelID(), qt.Equals, "cdcdcdcdcd")

	cert.ModelID = "cd"
	c.Assert(cert.ShortModelID(), qt.Equals, "cd")
}

func TestCertificateJSON(t *testing.T) {
	c := qt.New(t)

	c.Run("proof and settings stay byte-opaque", func(c *qt.C) {
		cert := validCertificate()
		data, err := json.Marshal(cert)
		c.Assert(err, qt.IsNil)

		var got AttributionCertificate
		c.Assert(json.Unmarshal(data, &got), qt.IsNil)
		c.Assert(string(got.Proof), qt.Equals, string(cert.Proof))
		c.Assert(string(got.Settings), qt.Equals, string(cert.Settings))
		c.Assert(got.VK, qt.DeepEquals, cert.VK)
		c.Assert(got.Input, qt.DeepEquals, cert.Input)
	})

	c.Run("vk encodes as hex string", func(c *qt.C) {
		data, err := json.Marshal(validCertificate())
		c.Assert(err, qt.IsNil)
		c.Assert(strings.Contains(string(data), `"vk":"0xaabb"`), qt.IsTrue)
	})
}
