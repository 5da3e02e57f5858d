package search

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
)

const fakeHits = "G1\tgnl|META|HEX-MONOMER\t1e-50\t62.5\t300\t250\t80\n" +
	"G2\tgnl|META|PTS-MONOMER\t1e-3\t25.0\t120\t40\t30\n"

// writeFakeTool writes a bash script named name into dir. The script logs its
// arguments to calls.log and, when withOutput is set, writes fakeHits to the
// file following -out/--out.
func writeFakeTool(t *testing.T, dir, name string, withOutput bool, exitCode int) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake aligners need bash")
	}

	content := "#!/usr/bin/env bash\n" +
		"echo \"" + name + " $*\" >> \"" + filepath.Join(dir, "calls.log") + "\"\n"
	if exitCode != 0 {
		content += "echo 'boom: bad input' >&2\nexit " + strconv.Itoa(exitCode) + "\n"
	}
	if withOutput {
		content += "out=''\nprev=''\n" +
			"for a in \"$@\"; do\n" +
			"  if [ \"$prev\" = '--out' ] || [ \"$prev\" = '-out' ]; then out=\"$a\"; fi\n" +
			"  prev=\"$a\"\n" +
			"done\n" +
			"if [ \"$1\" != 'makedb' ] && [ -n \"$out\" ]; then\n" +
			"cat > \"$out\" <<'EOF'\n" + fakeHits + "EOF\n" +
			"fi\n"
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("write fake %s: %v", name, err)
	}
}

// prepend a directory to PATH for this test
func prependPath(t *testing.T, dir string) {
	t.Helper()
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func writeInputs(t *testing.T, dir string) (query, ref string) {
	t.Helper()
	query = filepath.Join(dir, "query.faa")
	ref = filepath.Join(dir, "metacyc.faa")
	if err := os.WriteFile(query, []byte(">G1\nMKV\n>G2\nMAL\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ref, []byte(">gnl|META|HEX-MONOMER\nMKV\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return query, ref
}
