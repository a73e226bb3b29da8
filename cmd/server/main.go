package main

import "appraisal/internal/app/server"

func main() {
	server.Run()
}
