/*
DESCRIPTION
  Unbox is a thin command-line front end for the GPF unboxer core: it
  loads a raw 8-bit grayscale frame and a JSON configuration file, builds
  an Unboxer for the described frame format, decodes the one frame, and
  writes the recovered payload to stdout. The configuration-registry wire
  format and the raw image reader are external collaborators per this
  module's scope (only the boxconfig.Registry contract is specified); the
  JSON loader below is this command's own choice of concrete format, not
  part of the core.

AUTHORS
  Piql GPF Unboxer contributors

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package main implements the unbox command-line tool.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/piql/gpfunbox/boxconfig"
	"github.com/piql/gpfunbox/frame"
	"github.com/piql/gpfunbox/frame/tracker"
	"github.com/piql/gpfunbox/unboxer"
)

// Logging related constants.
const (
	logPath      = "/var/log/gpfunbox/unbox.log"
	logMaxSize   = 100 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logVerbosity = logging.Debug
	logSuppress  = true
)

func main() {
	configPath := flag.String("config", "", "Path to a JSON configuration registry dump.")
	imagePath := flag.String("image", "", "Path to a raw 8-bit grayscale frame (width*height bytes).")
	width := flag.Int("width", 0, "Image width in pixels.")
	height := flag.Int("height", 0, "Image height in pixels.")
	flag.Parse()

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	l := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)

	if *configPath == "" || *imagePath == "" || *width <= 0 || *height <= 0 {
		l.Fatal("unbox: -config, -image, -width and -height are all required")
	}

	registry, err := loadRegistry(*configPath)
	if err != nil {
		l.Fatal("unbox: loading configuration", "error", err.Error())
	}

	format, err := boxconfig.LoadFrameFormat(registry)
	if err != nil {
		l.Fatal("unbox: loading frame format", "error", err.Error())
	}
	pipelineSpec, err := boxconfig.LoadPipelineSpec(registry)
	if err != nil {
		l.Fatal("unbox: loading pipeline spec", "error", err.Error())
	}

	pix, err := os.ReadFile(*imagePath)
	if err != nil {
		l.Fatal("unbox: reading image", "error", err.Error())
	}
	img, err := frame.NewImage8(*width, *height, pix)
	if err != nil {
		l.Fatal("unbox: constructing image", "error", err.Error())
	}

	u, err := unboxer.New(unboxer.Config{
		Format:           format,
		Mode:             tracker.Analog,
		DataPipeline:     pipelineSpec,
		MetadataPipeline: pipelineSpec,
		QuantBlockWidth:  16,
		QuantBlockHeight: 64,
		Log:              l,
	})
	if err != nil {
		l.Fatal("unbox: building unboxer", "error", err.Error())
	}

	plaintext, metaList, stats, err := u.Decode(img, nil)
	if err != nil {
		l.Error("unbox: decode failed", "code", stats.Code.String(), "error", err.Error())
		os.Exit(1)
	}

	l.Info("unbox: decode succeeded", "bytes", len(plaintext), "metadataItems", len(metaList))
	if _, err := os.Stdout.Write(plaintext); err != nil {
		l.Fatal("unbox: writing output", "error", err.Error())
	}
}

// loadRegistry reads a JSON file of {"group.key": value} entries (int,
// string, or {"x":_,"y":_} object) into a boxconfig.Registry.
func loadRegistry(path string) (*boxconfig.Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	entries := make(map[boxconfig.Key]boxconfig.Value, len(doc))
	for k, v := range doc {
		key, err := splitKey(k)
		if err != nil {
			return nil, err
		}

		var asInt int
		if err := json.Unmarshal(v, &asInt); err == nil {
			entries[key] = boxconfig.IntValue(asInt)
			continue
		}
		var asStr string
		if err := json.Unmarshal(v, &asStr); err == nil {
			entries[key] = boxconfig.StrValue(asStr)
			continue
		}
		var asPoint struct{ X, Y int }
		if err := json.Unmarshal(v, &asPoint); err == nil {
			entries[key] = boxconfig.PointValue(frame.Point{X: asPoint.X, Y: asPoint.Y})
			continue
		}
		return nil, fmt.Errorf("unbox: entry %q is neither an int, string nor point", k)
	}
	return boxconfig.NewRegistry(entries), nil
}

func splitKey(k string) (boxconfig.Key, error) {
	for i := 0; i < len(k); i++ {
		if k[i] == '.' {
			return boxconfig.Key{Group: k[:i], Name: k[i+1:]}, nil
		}
	}
	return boxconfig.Key{}, fmt.Errorf("unbox: malformed config key %q, expected \"group.key\"", k)
}
