package main

import (
	"github.com/londoners/londoners-aws/lambda/api"
	"github.com/londoners/londoners-aws/londoners"
)

var lambdaName string // set by builder
var lambda api.Lambda

func init() {
	lambda = api.NewLambda(lambdaName)
}

func main() {
	defer londoners.Log.Flush()
	lambda.Start()
}
