package main

import (
	"github.com/londoners/londoners-aws/lambda/api"
	"github.com/londoners/londoners-aws/londoners"
)

var lambda api.Lambda

func init() { lambda = api.NewLambda("TokenRefresh") }

func main() {
	defer londoners.Log.Flush()
	lambda.Start()
}
