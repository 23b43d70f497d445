package llm

import "github.com/Vatsa10/Zomatooo/internal/logging"

func testLogger() *logging.Logger {
	return logging.New(nil, "silent")
}
