package main

import "github.com/yashrajoria/course-store/storefront/cli"

func main() {
	cli.Execute()
}
