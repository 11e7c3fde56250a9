package web

import "embed"

// StaticFiles embeds the entire web/static directory into the binary.
//
//go:embed static/*
var StaticFiles embed.FS

// DataFiles embeds the sample weekday and weekend ridership datasets.
// Figures are illustrative, not published counts.
//
//go:embed data/*.csv
var DataFiles embed.FS
