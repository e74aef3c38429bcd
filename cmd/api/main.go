package main

// @title talk-lmstudio API
// @version 1.0
// @description Text generation on top of a local LM Studio server.

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:9089
// @BasePath /
// @schemes http
import (
	_ "talk-lmstudio/docs"
	protocol "talk-lmstudio/protocal"

	"github.com/sirupsen/logrus"
)

func main() {
	err := protocol.ServeHTTP()
	if err != nil {
		logrus.Println(err)
	}
}
