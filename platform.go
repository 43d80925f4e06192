package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/bolo/internal/audio"
	"github.com/dgnsrekt/bolo/internal/cache"
	"github.com/dgnsrekt/bolo/internal/dispatch"
	"github.com/dgnsrekt/bolo/internal/espeak"
	"github.com/dgnsrekt/bolo/internal/speech"
	"github.com/dgnsrekt/bolo/utils"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"
)

// platform bundles the host speech stack. output is nil when espeak-ng is
// not installed.
type platform struct {
	cache   *cache.Manager
	engine  *espeak.Engine
	player  *audio.Player
	output  *espeak.Output
	watcher *espeak.Watcher
}

func cacheDir() (string, error) {
	if dir := utils.CleanDir(viper.GetString("cache.dir")); dir != "" {
		return dir, nil
	}
	dir, err := gap.NewScope(gap.User, "bolo").CacheDir()
	if err != nil {
		return "", fmt.Errorf("could not find cache directory: %w", err)
	}
	return filepath.Join(dir, "audio"), nil
}

func openCache() (*cache.Manager, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, err
	}
	cfg := cache.DefaultConfig(dir)
	cfg.DiskCapacity = int64(viper.GetInt("cache.max_size")) * 1024 * 1024
	cfg.CompressionLevel = viper.GetInt("cache.compression")
	return cache.NewManager(cfg)
}

// openPlatform builds the espeak-ng output. A missing espeak-ng binary is
// not an error: the dispatcher reports unsupported instead.
func openPlatform() (*platform, error) {
	c, err := openCache()
	if err != nil {
		log.Warn("audio cache disabled", "error", err)
		c, _ = cache.NewManager(cache.Config{MemoryCapacity: cache.DefaultConfig("").MemoryCapacity})
	}
	p := &platform{cache: c}

	engine, err := espeak.NewEngine(espeak.Config{
		Binary:             viper.GetString("espeak.binary"),
		SynthesisPerSecond: viper.GetFloat64("espeak.rate_limit"),
		Cache:              c,
	})
	if errors.Is(err, speech.ErrUnsupported) {
		log.Warn("speech unavailable", "error", err)
		return p, nil
	} else if err != nil {
		_ = p.Close()
		return nil, err
	}

	p.engine = engine
	p.player = audio.NewPlayer()
	p.output = espeak.NewOutput(engine, p.player)

	dir, err := espeak.FindDataDir(utils.CleanDir(viper.GetString("espeak.data_dir")))
	if err != nil {
		log.Debug("not watching espeak voices", "error", err)
		return p, nil
	}
	if p.watcher, err = espeak.Watch(p.output, dir); err != nil {
		log.Warn("not watching espeak voices", "error", err)
	}
	return p, nil
}

// speechOutput avoids handing the dispatcher a typed nil.
func (p *platform) speechOutput() speech.Output {
	if p.output == nil {
		return nil
	}
	return p.output
}

func (p *platform) dispatcher() *dispatch.Dispatcher {
	return dispatch.New(p.speechOutput(),
		dispatch.WithSettings(dispatch.Settings{
			Rate:  viper.GetFloat64("rate"),
			Pitch: viper.GetFloat64("pitch"),
			Voice: viper.GetString("voice"),
		}),
		dispatch.WithIntermediateErrors(viper.GetBool("intermediate_errors")),
	)
}

func (p *platform) Close() error {
	var errs []error
	if p.watcher != nil {
		errs = append(errs, p.watcher.Close())
	}
	if p.output != nil {
		errs = append(errs, p.output.Close())
	}
	if p.player != nil {
		errs = append(errs, p.player.Close())
	}
	if p.cache != nil {
		errs = append(errs, p.cache.Close())
	}
	return errors.Join(errs...)
}
