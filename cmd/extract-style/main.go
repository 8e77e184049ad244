package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/relayframe/personagen/internal/config"
	"github.com/relayframe/personagen/internal/style"
	"github.com/relayframe/personagen/internal/styleextract"
)

func main() {
	videoPath := flag.String("video", "", "path to the reference talking-head video")
	name := flag.String("name", "", "name to give the derived style profile")
	out := flag.String("out", "", "path to write the derived profile JSON (defaults to <name>.json)")
	flag.Parse()

	if *videoPath == "" || *name == "" {
		fmt.Fprintln(os.Stderr, "extract-style: --video and --name are required")
		os.Exit(2)
	}
	outPath := *out
	if outPath == "" {
		outPath = *name + ".json"
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	profile, err := styleextract.BuildStyleFromReference(ctx, *videoPath, *name, styleextract.Options{})
	if err != nil {
		log.Fatalf("extraction failed: %v", err)
	}

	data, err := profile.Save()
	if err != nil {
		log.Fatalf("failed to serialize profile: %v", err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		log.Fatalf("failed to write %s: %v", outPath, err)
	}

	if cfg.RedisURL != "" {
		cache, err := style.NewCache(cfg.RedisURL, 0)
		if err != nil {
			log.Printf("warning: failed to cache profile in redis: %v", err)
		} else {
			defer cache.Close()
			if err := cache.Set(ctx, *name, profile); err != nil {
				log.Printf("warning: failed to cache profile in redis: %v", err)
			}
		}
	}

	fmt.Println(outPath)
}
