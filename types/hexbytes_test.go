package types

import (
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestHexBytes(t *testing.T) {
	c := qt.New(t)

	c.Run("Bytes", func(c *qt.C) {
		hb := HexBytes{0x01, 0x02, 0x03}
		out := (&hb).Bytes()
		c.Assert(out, qt.DeepEquals, []byte{0x01, 0x02, 0x03})

		out[0] = 0xFF
		c.Assert(hb[0], qt.Equals, byte(0xFF))
	})

	c.Run("String", func(c *qt.C) {
		testCases := []struct {
			name string
			in   HexBytes
			want string
		}{
			{name: "nil slice", in: nil, want: "0x"},
			{name: "empty", in: HexBytes{}, want: "0x"},
			{name: "non-empty", in: HexBytes{0x00, 0xAB, 0xCD}, want: "0x00abcd"},
		}

		for _, tc := range testCases {
			tc := tc
			c.Run(tc.name, func(c *qt.C) {
				c.Assert((&tc.in).String(), qt.Equals, tc.want)
			})
		}
	})

	c.Run("Equal", func(c *qt.C) {
		testCases := []struct {
			name string
			a, b HexBytes
			want bool
		}{
			{name: "equal", a: HexBytes{0x01, 0x02}, b: HexBytes{0x01, 0x02}, want: true},
			{name: "different length", a: HexBytes{0x01}, b: HexBytes{0x01, 0x02}, want: false},
			{name: "different content", a: HexBytes{0x01, 0x02}, b: HexBytes{0x01, 0x03}, want: false},
			{name: "both empty", a: HexBytes{}, b: HexBytes{}, want: true},
		}

		for _, tc := range testCases {
			tc := tc
			c.Run(tc.name, func(c *qt.C) {
				c.Assert(tc.a.Equal(tc.b), qt.Equals, tc.want)
			})
		}
	})

	c.Run("JSON", func(c *qt.C) {
		c.Run("MarshalJSON", func(c *qt.C) {
			testCases := []struct {
				name string
				in   HexBytes
				want string
			}{
				{name: "empty", in: HexBytes{}, want: `"0x"`},
				{name: "non-empty", in: HexBytes{0xDE, 0xAD, 0xBE, 0xEF}, want: `"0xdeadbeef"`},
			}

			for _, tc := range testCases {
				tc := tc
				c.Run(tc.name, func(c *qt.C) {
					b, err := tc.in.MarshalJSON()
					c.Assert(err, qt.IsNil)
					c.Assert(string(b), qt.Equals, tc.want)

					viaJSON, err := json.Marshal(tc.in)
					c.Assert(err, qt.IsNil)
					c.Assert(string(viaJSON), qt.Equals, tc.want)
				})
			}
		})

		c.Run("UnmarshalJSON valid", func(c *qt.C) {
			testCases := []struct {
				name string
				in   string
				want HexBytes
			}{
				{name: "with 0x prefix", in: `"0xdeadbeef"`, want: HexBytes{0xDE, 0xAD, 0xBE, 0xEF}},
				{name: "with 0X prefix", in: `"0Xdeadbeef"`, want: HexBytes{0xDE, 0xAD, 0xBE, 0xEF}},
				{name: "without prefix", in: `"deadbeef"`, want: HexBytes{0xDE, 0xAD, 0xBE, 0xEF}},
				{name: "empty", in: `"0x"`, want: HexBytes{}},
			}

			for _, tc := range testCases {
				tc := tc
				c.Run(tc.name, func(c *qt.C) {
					var hb HexBytes
					c.Assert(json.Unmarshal([]byte(tc.in), &hb), qt.IsNil)
					if len(tc.want) == 0 {
						c.Assert(len(hb), qt.Equals, 0)
						return
					}
					c.Assert(hb, qt.DeepEquals, tc.want)
				})
			}
		})

		c.Run("UnmarshalJSON invalid", func(c *qt.C) {
			testCases := []struct {
				name string
				in   string
				re   string
			}{
				{name: "not a JSON string", in: `123`, re: `invalid JSON string: "123"`},
				{name: "odd length", in: `"0x0"`, re: `encoding/hex: odd length hex string`},
				{name: "invalid byte", in: `"0xzz"`, re: `encoding/hex: invalid byte: .*`},
			}

			for _, tc := range testCases {
				tc := tc
				c.Run(tc.name, func(c *qt.C) {
					var hb HexBytes
					c.Assert(json.Unmarshal([]byte(tc.in), &hb), qt.ErrorMatches, tc.re)
				})
			}
		})

		c.Run("UnmarshalJSON reslices to decoded length", func(c *qt.C) {
			hb := HexBytes{0xAA, 0xBB, 0xCC, 0xDD}
			c.Assert(json.Unmarshal([]byte(`"0x01"`), &hb), qt.IsNil)
			c.Assert(hb, qt.DeepEquals, HexBytes{0x01})
			c.Assert(len(hb), qt.Equals, 1)
		})
	})

	c.Run("HexStringToHexBytes", func(c *qt.C) {
		testCases := []struct {
			name string
			in   string
			want HexBytes
		}{
			{name: "with prefix", in: "0xdeadbeef", want: HexBytes{0xDE, 0xAD, 0xBE, 0xEF}},
			{name: "with uppercase prefix", in: "0Xdeadbeef", want: HexBytes{0xDE, 0xAD, 0xBE, 0xEF}},
			{name: "without prefix", in: "deadbeef", want: HexBytes{0xDE, 0xAD, 0xBE, 0xEF}},
			{name: "empty", in: "", want: HexBytes{}},
		}

		for _, tc := range testCases {
			tc := tc
			c.Run(tc.name, func(c *qt.C) {
				got, err := HexStringToHexBytes(tc.in)
				c.Assert(err, qt.IsNil)
				c.Assert(got, qt.DeepEquals, tc.want)
			})
		}

		_, err := HexStringToHexBytes("0xzz")
		c.Assert(err, qt.ErrorMatches, `invalid hex string "zz": .*`)
	})

	c.Run("HexStringToHexBytesMustUnmarshal", func(c *qt.C) {
		c.Run("valid", func(c *qt.C) {
			c.Assert(HexStringToHexBytesMustUnmarshal("0xdeadbeef"), qt.DeepEquals, HexBytes{0xDE, 0xAD, 0xBE, 0xEF})
		})

		c.Run("panic on invalid", func(c *qt.C) {
			c.Assert(func() {
				_ = HexStringToHexBytesMustUnmarshal("0xzz")
			}, qt.PanicMatches, `encoding/hex: invalid byte: .*`)
		})
	})
}
