// Package testutil provides deterministic test doubles for the external
// proving toolkit.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// FakeToolkitVersion is the version the fake binary reports, normalized the
// way the toolkit adapter normalizes it.
const FakeToolkitVersion = "v22.0.1"

// FakeToolkit writes an executable shell script standing in for the proving
// toolkit binary and returns its path. The fake derives every artifact
// deterministically from its input files, embeds a volatile timestamp in
// generated settings the way the real toolkit does, and produces
// self-authenticating proofs so any byte flip makes verify reject. The
// model's byte length stands in for its circuit structure: settings and
// keys depend only on the length, matching a toolkit whose circuit
// artifacts commit to hashed parameters rather than raw weight values.
// Mutating a weight byte therefore regenerates identical keys, while
// models of different shapes get different ones. Behavior toggles through
// environment variables, set with t.Setenv:
//
//   - FAKE_TOOLKIT_FAIL: subcommand that fails with a diagnostic
//   - FAKE_TOOLKIT_LOG: file collecting one line per invoked subcommand
//   - FAKE_TOOLKIT_SALT: perturbs key generation, simulating a different
//     toolkit build
func FakeToolkit(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ezkl")
	if err := os.WriteFile(path, []byte(fakeToolkitScript), 0o755); err != nil {
		t.Fatalf("could not write fake toolkit: %v", err)
	}
	return path
}

const fakeToolkitScript = `#!/bin/sh
# Deterministic stand-in for the proving toolkit, test use only.
set -eu

if [ $# -eq 0 ]; then
    echo "error: no command" >&2
    exit 1
fi
cmd="$1"
shift

if [ "$cmd" = "--version" ]; then
    echo "ezkl 22.0.1"
    exit 0
fi

if [ -n "${FAKE_TOOLKIT_LOG:-}" ]; then
    echo "$cmd" >> "$FAKE_TOOLKIT_LOG"
fi

if [ "${FAKE_TOOLKIT_FAIL:-}" = "$cmd" ]; then
    echo "synthetic $cmd failure" >&2
    exit 1
fi

model=""; settings=""; srs=""; compiled=""; pk=""; vk=""
data=""; output=""; witness=""; proof=""
while [ $# -gt 0 ]; do
    case "$1" in
    --model) model="$2"; shift 2 ;;
    --settings-path) settings="$2"; shift 2 ;;
    --srs-path) srs="$2"; shift 2 ;;
    --compiled-circuit) compiled="$2"; shift 2 ;;
    --pk-path) pk="$2"; shift 2 ;;
    --vk-path) vk="$2"; shift 2 ;;
    --data) data="$2"; shift 2 ;;
    --output) output="$2"; shift 2 ;;
    --witness) witness="$2"; shift 2 ;;
    --proof-path) proof="$2"; shift 2 ;;
    *) shift 2 ;;
    esac
done

digest() {
    cksum < "$1" | cut -d' ' -f1
}

require() {
    if [ ! -f "$1" ]; then
        echo "error: missing input file: $1" >&2
        exit 1
    fi
}

structure() {
    wc -c < "$1" | tr -d ' '
}

case "$cmd" in
gen-settings)
    require "$model"
    len=$(structure "$model")
    ts=$(date +%s%N)
    printf '{\n  "run_args": {\n    "input_visibility": "Public",\n    "output_visibility": "Public",\n    "param_visibility": "Hashed"\n  },\n  "logrows": 17,\n  "model_size": %s,\n  "timestamp": %s\n}\n' "$len" "$ts" > "$settings"
    ;;
get-srs)
    require "$settings"
    s=$(digest "$settings")
    printf 'srs:%s\n' "$s" > "$srs"
    ;;
compile-circuit)
    require "$model"
    require "$settings"
    len=$(structure "$model")
    printf 'compiled:%s\n' "$len" > "$compiled"
    ;;
setup)
    require "$compiled"
    require "$srs"
    x=$(digest "$compiled")
    salt="${FAKE_TOOLKIT_SALT:-}"
    printf 'pk:%s%s\n' "$x" "$salt" > "$pk"
    printf 'vk:%s%s\n' "$x" "$salt" > "$vk"
    ;;
gen-witness)
    require "$compiled"
    require "$data"
    x=$(digest "$compiled")
    i=$(digest "$data")
    printf 'witness:%s:%s\n' "$x" "$i" > "$output"
    ;;
prove)
    require "$compiled"
    require "$witness"
    require "$pk"
    require "$srs"
    key=$(sed 's/^pk://' "$pk")
    w=$(digest "$witness")
    payload=$(printf '{"key":"%s","body":"%s"' "$key" "$w")
    c=$(printf '%s' "$payload" | cksum | cut -d' ' -f1)
    printf '%s,"checksum":"%s"}' "$payload" "$c" > "$proof"
    ;;
verify)
    require "$proof"
    require "$settings"
    require "$vk"
    require "$srs"
    content=$(cat "$proof")
    case "$content" in
    *',"checksum":"'*'"}') ;;
    *) echo "error: malformed proof" >&2; exit 1 ;;
    esac
    payload="${content%,\"checksum\":*}"
    want="${content##*\"checksum\":\"}"
    want="${want%\"\}}"
    got=$(printf '%s' "$payload" | cksum | cut -d' ' -f1)
    if [ "$got" != "$want" ]; then
        echo "error: proof integrity check failed" >&2
        exit 1
    fi
    key="${payload#*\"key\":\"}"
    key="${key%%\"*}"
    vkkey=$(sed 's/^vk://' "$vk")
    if [ "$key" != "$vkkey" ]; then
        echo "error: proof does not match verification key" >&2
        exit 1
    fi
    echo "verified"
    ;;
*)
    echo "error: unknown command: $cmd" >&2
    exit 1
    ;;
esac
`
