// Package main is the entry point for the document RAG server.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/nichiki/markitdown-rag-sample/cmd/docrag/app"
)

func main() {
	app.NewApp().Run()
}
