package data

import "embed"

// Stock tables compiled into the binary so the simulation runs without a
// data directory. File loaders below override them.
//
//go:embed yaml/*.yaml
var stock embed.FS

func mustStock(name string) []byte {
	raw, err := stock.ReadFile("yaml/" + name)
	if err != nil {
		panic("data: missing embedded table " + name)
	}
	return raw
}
