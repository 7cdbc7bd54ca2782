package netconn

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modoterra/hostsnap/pkg/core"
)

const netstatOutput = `
Active Connections

  Proto  Local Address          Foreign Address        State           PID
  TCP    0.0.0.0:135            0.0.0.0:0              LISTENING       1004
  TCP    0.0.0.0:445            0.0.0.0:0              LISTENING       4
  TCP    127.0.0.1:5939         0.0.0.0:0              LISTENING       3872
  TCP    [::]:135               [::]:0                 LISTENING       1004
  TCP    [::1]:49669            [::]:0                 LISTENING       3872
  UDP    0.0.0.0:123            *:*                                    1516
`

func TestParseNetstatOutput(t *testing.T) {
	entries := Parse(netstatOutput)

	want := []core.ConnectionEntry{
		{Proto: "TCP", Port: 135, PID: 1004},
		{Proto: "TCP", Port: 445, PID: 4},
		{Proto: "TCP", Port: 5939, PID: 3872},
		{Proto: "TCP", Port: 135, PID: 1004},
		{Proto: "TCP", Port: 49669, PID: 3872},
	}
	assert.Equal(t, want, entries)
}

func TestParseLineRejects(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"blank", ""},
		{"whitespace", "   \t "},
		{"header", "  Proto  Local Address          Foreign Address        State           PID"},
		{"lowercase header", "proto local foreign state pid"},
		{"title", "Active Connections"},
		{"four fields", "UDP    0.0.0.0:123            *:*      1516"},
		{"port not numeric", "TCP 0.0.0.0:http 0.0.0.0:0 LISTENING 4"},
		{"port out of range", "TCP 0.0.0.0:70000 0.0.0.0:0 LISTENING 4"},
		{"negative port", "TCP 0.0.0.0:-1 0.0.0.0:0 LISTENING 4"},
		{"no colon", "TCP localhost 0.0.0.0:0 LISTENING 4"},
		{"wildcard port", "TCP *:* 0.0.0.0:0 LISTENING 4"},
		{"pid not numeric", "TCP 0.0.0.0:80 0.0.0.0:0 LISTENING nginx"},
		{"pid overflows int32", "TCP 0.0.0.0:80 0.0.0.0:0 LISTENING 4294967296"},
		{"bracketed without port", "TCP [::1] [::]:0 LISTENING 4"},
		{"bracketed empty port", "TCP [::1]: [::]:0 LISTENING 4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseLine(tt.line)
			assert.False(t, ok)
		})
	}
}

func TestParseLineAccepts(t *testing.T) {
	tests := []struct {
		name string
		line string
		want core.ConnectionEntry
	}{
		{"ipv4", "TCP 192.168.1.10:8080 10.0.0.1:52000 ESTABLISHED 512", core.ConnectionEntry{Proto: "TCP", Port: 8080, PID: 512}},
		{"extra fields", "TCP 0.0.0.0:22 0.0.0.0:0 LISTENING 88 extra", core.ConnectionEntry{Proto: "TCP", Port: 22, PID: 88}},
		{"negative pid", "TCP 0.0.0.0:22 0.0.0.0:0 LISTENING -1", core.ConnectionEntry{Proto: "TCP", Port: 22, PID: -1}},
		{"port zero", "TCP 0.0.0.0:0 0.0.0.0:0 LISTENING 5", core.ConnectionEntry{Proto: "TCP", Port: 0, PID: 5}},
		{"max port", "TCP 0.0.0.0:65535 0.0.0.0:0 LISTENING 5", core.ConnectionEntry{Proto: "TCP", Port: 65535, PID: 5}},
		{"lowercase proto", "udp 0.0.0.0:5353 *:* UNCONN 77", core.ConnectionEntry{Proto: "UDP", Port: 5353, PID: 77}},
		{"tabs", "TCP\t0.0.0.0:22\t0.0.0.0:0\tLISTENING\t88", core.ConnectionEntry{Proto: "TCP", Port: 22, PID: 88}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLine(tt.line)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalPortIPv6(t *testing.T) {
	tests := []struct {
		addr   string
		want   uint16
		wantOK bool
	}{
		{"[::1]:8080", 8080, true},
		{"[::]:135", 135, true},
		{"[fe80::1c2a:3bff:fe4d:5e6f%12]:49664", 49664, true},
		{"[2001:db8::1]:443", 443, true},
		{"::1:631", 631, true},
		{":::22", 22, true},
		{"[::1]", 0, false},
		{"[::1]:", 0, false},
		{"[::1]:x", 0, false},
		{"[2001:db8::1", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			got, ok := LocalPort(tt.addr)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, ParseLines(nil))
}

func TestParseContinuesAfterLongLine(t *testing.T) {
	output := "  Proto  Local Address  Foreign Address  State  PID\n" +
		"  TCP    0.0.0.0:80     0.0.0.0:0        LISTENING  10\n" +
		strings.Repeat("x", 2*1024*1024) + "\n" +
		"  TCP    0.0.0.0:443    0.0.0.0:0        LISTENING  11\r\n"

	assert.Equal(t, []core.ConnectionEntry{
		{Proto: "TCP", Port: 80, PID: 10},
		{Proto: "TCP", Port: 443, PID: 11},
	}, Parse(output))
}
