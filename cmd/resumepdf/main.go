// Command resumepdf writes the active resume to a PDF file and can publish
// it over SFTP.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"portfolio/internal/config"
	"portfolio/internal/db"
	"portfolio/internal/media"
	"portfolio/internal/resume"
	"portfolio/internal/sftpclient"
	"portfolio/internal/store"
)

func main() {
	var (
		outPath = flag.String("o", "", "output file (default: <Full_Name>_Resume.pdf)")
		upload  = flag.Bool("upload", false, "upload to SFTP after generating the file")
	)
	flag.Parse()

	rootCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	dbc, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbc.Close()

	st := store.New(dbc)
	exporter := &resume.Exporter{
		Source:    st.Profiles,
		Generator: resume.NewGenerator(media.New(cfg.Media.Root, cfg.Media.URL)),
	}

	start := time.Now()
	data, name, err := exporter.Export(rootCtx)
	if err != nil {
		log.Fatal(err)
	}
	if *outPath == "" {
		*outPath = name
	}
	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s (%d bytes) in %s", *outPath, len(data), time.Since(start).Round(time.Millisecond))

	if *upload {
		upCfg := sftpclient.Config{
			Host:                  cfg.SFTP.Host,
			Port:                  cfg.SFTP.Port,
			User:                  cfg.SFTP.User,
			Pass:                  cfg.SFTP.Pass,
			RemoteDir:             cfg.SFTP.Dir,
			KnownHosts:            cfg.SFTP.KnownHosts,
			InsecureIgnoreHostKey: cfg.SFTP.InsecureIgnoreHostKey,
		}
		f, err := os.Open(*outPath)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()

		upCtx, upCancel := context.WithTimeout(rootCtx, 5*time.Minute)
		defer upCancel()
		if err := sftpclient.Upload(upCtx, upCfg, f, filepath.Base(*outPath)); err != nil {
			log.Fatal(err)
		}
	}
}
