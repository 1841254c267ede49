package main

import "github.com/clipforge/media-api/cmd"

// @title           ClipForge Media API
// @version         1.0.0
// @description     Media ingestion and processing API deriving transcripts, content insights and highlight clips
// @contact.name    API Support
// @contact.url     https://github.com/clipforge/media-api
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:8080
// @BasePath        /
// @schemes         http https
func main() {
	cmd.Execute()
}
