package metrics

import (
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/echocheck/packages/core/runner"
)

// WriteFile exports result to path. A .json path gets the JSON document,
// anything else the Prometheus text format.
func WriteFile(path string, result *runner.RunResult) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return NewJSONExporter(WithJSONFile(path)).Export(result)
	}

	rec := NewRecorder(nil)
	rec.ObserveRun(result)
	return rec.WriteTextfile(path)
}
