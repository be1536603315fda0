//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"path"
	"syscall/js"
	"time"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/indexeddb"

	"github.com/kittclouds/ephyrapart/internal/config"
	"github.com/kittclouds/ephyrapart/internal/log"
	"github.com/kittclouds/ephyrapart/pkg/ephyra"
	"github.com/kittclouds/ephyrapart/pkg/offsetmap"
	"github.com/kittclouds/ephyrapart/pkg/sab"
)

// Version info
const Version = "0.1.0"

// dbName is the IndexedDB database holding the resource bundle.
const dbName = "ephyra"

// Global state
var (
	resources hackpadfs.FS
	part      *ephyra.Part
	shared    *sab.SharedBuffer
)

func main() {
	println("[Ephyra] WASM Ready v" + Version)

	// Register exports
	js.Global().Set("Ephyra", js.ValueOf(map[string]interface{}{
		"version":     js.FuncOf(getVersion),
		"putResource": js.FuncOf(putResource),
		"initialize":  js.FuncOf(initialize),
		"normalize":   js.FuncOf(normalize),
		"translate":   js.FuncOf(translate),
		"analyze":     js.FuncOf(analyze),
		"entities":    js.FuncOf(entities),
		"parse":       js.FuncOf(parse),
		"interpret":   js.FuncOf(interpret),
		"stats":       js.FuncOf(stats),
		// SharedArrayBuffer API
		"attachBuffer":      js.FuncOf(attachBuffer),
		"entitiesToBuffer":  js.FuncOf(entitiesToBuffer),
		"normalizeToBuffer": js.FuncOf(normalizeToBuffer),
	}))

	select {}
}

// getVersion returns the module version
func getVersion(this js.Value, args []js.Value) interface{} {
	return Version
}

// openResources opens the IndexedDB-backed resource filesystem once.
func openResources() (hackpadfs.FS, error) {
	if resources != nil {
		return resources, nil
	}
	fs, err := indexeddb.NewFS(context.Background(), dbName, indexeddb.Options{})
	if err != nil {
		return nil, err
	}
	resources = fs
	return fs, nil
}

// putResource stores one resource file, e.g. a NE list fetched by the page.
// Args: [path string, content string]
func putResource(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("requires 2 args: path (string), content (string)")
	}
	fs, err := openResources()
	if err != nil {
		return errorResult("failed to create idb fs: " + err.Error())
	}

	name := config.FSPath(args[0].String())
	if dir := path.Dir(name); dir != "." {
		if err := hackpadfs.MkdirAll(fs, dir, 0o755); err != nil {
			return errorResult("mkdir " + dir + ": " + err.Error())
		}
	}
	if err := hackpadfs.WriteFullFile(fs, name, []byte(args[1].String()), 0o644); err != nil {
		return errorResult("write " + name + ": " + err.Error())
	}
	return successResult("stored " + name)
}

// initialize creates every service from the stored resources. Steps whose
// resources are missing are reported, not fatal.
// Args: [policy string] - optional whitespace policy
func initialize(this js.Value, args []js.Value) interface{} {
	fs, err := openResources()
	if err != nil {
		return errorResult("failed to create idb fs: " + err.Error())
	}

	policy := offsetmap.Collapse
	if len(args) > 0 && args[0].Type() == js.TypeString {
		if policy, err = offsetmap.ParsePolicy(args[0].String()); err != nil {
			return errorResult(err.Error())
		}
	}

	// Re-initialize to ensure clean state
	if part != nil {
		part.Close()
	}
	cfg := config.NewAppConfigWithOptions(config.WithPolicy(policy), config.WithInitWorkers(1))
	part = ephyra.New(cfg, log.NewLogger(cfg), fs)

	start := time.Now()
	status, err := part.Init(context.Background())
	if err != nil {
		return errorResult(err.Error())
	}

	failed := make(map[string]string, len(status.Failed))
	for step, err := range status.Failed {
		failed[string(step)] = err.Error()
	}
	println("[Ephyra] ✅ Initialized:", len(status.Loaded), "steps,", len(failed), "failed")
	return jsonResult(map[string]interface{}{
		"loaded":    status.Loaded,
		"failed":    failed,
		"timing_us": time.Since(start).Microseconds(),
	})
}

// normalize collapses whitespace and returns the derived text and mapping.
// Args: [text string, policy string]
func normalize(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("normalize requires at least 1 argument: text")
	}
	policy := offsetmap.Collapse
	if len(args) > 1 {
		var err error
		if policy, err = offsetmap.ParsePolicy(args[1].String()); err != nil {
			return errorResult(err.Error())
		}
	}

	derived, mapping := offsetmap.Build(args[0].String(), policy)
	return jsonResult(map[string]interface{}{
		"derived": derived,
		"mapping": mapping,
	})
}

// translate maps a derived range back to the original text.
// Args: [mappingJSON string, start int, end int]
func translate(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return errorResult("requires 3 args: mappingJSON (string), start (int), end (int)")
	}

	var m offsetmap.Mapping
	if err := json.Unmarshal([]byte(args[0].String()), &m); err != nil {
		return errorResult("invalid mapping json: " + err.Error())
	}
	start, end, err := m.TranslateRange(args[1].Int(), args[2].Int())
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(map[string]interface{}{"start": start, "end": end})
}

// analyze runs the sentence/token/chunk pipeline.
// Args: [text string]
func analyze(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("analyze requires 1 argument: text")
	}
	if part == nil {
		return errorResult("not initialized")
	}
	doc, err := part.Analyze(context.Background(), args[0].String())
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(doc)
}

// entities finds named entities; ranges point into the given text.
// Args: [text string]
func entities(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("entities requires 1 argument: text")
	}
	if part == nil {
		return errorResult("not initialized")
	}
	es, err := part.Entities(args[0].String())
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(es)
}

// parse returns the constituency tree of one sentence.
// Args: [sentence string]
func parse(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("parse requires 1 argument: sentence")
	}
	if part == nil {
		return errorResult("not initialized")
	}
	res, err := part.Parse(context.Background(), args[0].String())
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(map[string]interface{}{
		"tree":  res.Tree,
		"parse": res.Tree.String(),
		"score": res.Score,
	})
}

// interpret matches a question against the question patterns.
// Args: [question string]
func interpret(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("interpret requires 1 argument: question")
	}
	if part == nil {
		return errorResult("not initialized")
	}
	interps, err := part.Interpret(args[0].String())
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(interps)
}

// stats computes readability metrics.
// Args: [text string]
func stats(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("stats requires 1 argument: text")
	}
	if part == nil {
		return errorResult("not initialized")
	}
	res, err := part.Stats(context.Background(), args[0].String())
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(res)
}

// attachBuffer registers the SharedArrayBuffer binary results are written to.
// Args: [buffer SharedArrayBuffer]
func attachBuffer(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("attachBuffer requires 1 argument: buffer")
	}
	shared = sab.New(args[0])
	if shared == nil {
		return errorResult("buffer is undefined")
	}
	return successResult("buffer attached")
}

// entitiesToBuffer writes entity spans to the shared buffer and returns the
// type table the span TypeIDs index.
// Args: [text string]
func entitiesToBuffer(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("entitiesToBuffer requires 1 argument: text")
	}
	if part == nil || shared == nil {
		return errorResult("not initialized")
	}
	es, err := part.Entities(args[0].String())
	if err != nil {
		return errorResult(err.Error())
	}

	spans, types := sab.SpansFromEntities(es)
	if err := shared.WriteMessage(sab.MsgTypeEntitySpans, sab.EncodeSpans(spans)); err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(map[string]interface{}{"count": len(spans), "types": types})
}

// normalizeToBuffer writes the mapping to the shared buffer and returns the
// derived text.
// Args: [text string]
func normalizeToBuffer(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("normalizeToBuffer requires 1 argument: text")
	}
	if shared == nil {
		return errorResult("no buffer attached")
	}
	policy := offsetmap.Collapse
	if part != nil {
		policy = part.Config().Policy()
	}

	derived, mapping := offsetmap.Build(args[0].String(), policy)
	if err := shared.WriteMessage(sab.MsgTypeMapping, sab.EncodeMapping(mapping)); err != nil {
		return errorResult(err.Error())
	}
	return derived
}

// Helper: Marshal a result or report the marshal error
func jsonResult(v interface{}) interface{} {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return errorResult(err.Error())
	}
	return string(jsonBytes)
}

// Helper: Create error result
func errorResult(msg string) interface{} {
	result := map[string]interface{}{
		"error": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}

// Helper: Create success result
func successResult(msg string) interface{} {
	result := map[string]interface{}{
		"success": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}
