// Package config provides configuration loading for the msgbridge runner.
//
// Configuration is read from JSON or YAML files (chosen by extension),
// merged over DefaultConfig, then overridden from MSGBRIDGE_* environment
// variables.
//
// # Basic Usage
//
//	cfg, err := config.Load("msgbridge.yaml")
//	if err != nil {
//	    return err
//	}
//
// Layered loading, later layers overriding earlier ones section by section:
//
//	loader := config.NewLoader()
//	loader.AddLayer("base.yaml")
//	loader.AddLayer("local.json")
//	loader.EnableValidation(true)
//	cfg, err := loader.Load()
//
// # File Format
//
//	queue:
//	  name: telemetry
//	  initial_capacity: 64
//	  copy_policy: before_lock   # or under_lock
//	lua:
//	  script: scripts/consumer.lua
//	  global: queue
//	  timeout: 30s
//	metrics:
//	  enabled: true
//	  addr: ":9090"
//	  path: /metrics
//	producers:
//	  count: 4
//	  messages: 100
//	  rate: 50      # per producer per second, 0 = unlimited
//	  burst: 1
//	consumer:
//	  poll_interval: 5ms
//	  idle_polls: 20
//
// Durations are written as Go duration strings ("250ms", "30s") in both
// formats.
//
// # Environment Overrides
//
//	MSGBRIDGE_QUEUE_NAME, MSGBRIDGE_QUEUE_COPY_POLICY,
//	MSGBRIDGE_LUA_SCRIPT, MSGBRIDGE_LUA_GLOBAL, MSGBRIDGE_METRICS_ADDR,
//	MSGBRIDGE_PRODUCERS_COUNT, MSGBRIDGE_PRODUCERS_MESSAGES
//
// # Thread Safety
//
// Config values are plain data. SafeConfig wraps one behind an RWMutex and
// hands out copies.
package config
