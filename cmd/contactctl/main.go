// Command contactctl checks a running portfolio server: it calls the health
// endpoint and submits a message through the contact form client.
package main

func main() {
	Execute()
}
