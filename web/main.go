//go:build js && wasm

// This is a light wasm wrapper around the schema diff. Both schemas are given in the
// YAML format of database/file.
package main

import (
	"bytes"
	"context"
	"syscall/js"

	"github.com/sqldef/pgschemadiff"
	"github.com/sqldef/pgschemadiff/database"
	"github.com/sqldef/pgschemadiff/database/file"
)

// diff(desired, current, config, callback) calls back with (error, migration).
func diff(this js.Value, args []js.Value) any {
	desired := args[0].String()
	current := args[1].String()
	configYAML := args[2].String()
	callback := args[3]

	config, err := database.ParseGeneratorConfigString(configYAML)
	if err != nil {
		callback.Invoke(err.Error(), js.Null())
		return false
	}

	var out bytes.Buffer
	options := &pgschemadiff.Options{Config: config}
	err = pgschemadiff.Run(context.Background(), file.StringDatabase(desired), file.StringDatabase(current), database.WriterLogger{W: &out}, options)
	if err != nil {
		callback.Invoke(err.Error(), js.Null())
		return false
	}
	callback.Invoke(js.Null(), out.String())
	return true
}

func main() {
	c := make(chan bool)
	js.Global().Set("_PGSCHEMADIFF", js.FuncOf(diff))
	<-c
}
