package main

import "fieldops/internal/app/server"

func main() {
	server.Run()
}
