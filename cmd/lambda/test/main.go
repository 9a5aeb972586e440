package main

import (
	"errors"

	aws "github.com/aws/aws-lambda-go/lambda"
	"github.com/londoners/londoners-aws/londoners"
)

type request struct{}
type response struct{}

var db londoners.DB

func init() {
	settings, err := londoners.NewSettings()
	if err != nil {
		londoners.Log.Panicf(`Failed to read settings: "%v".`, err)
	}
	londoners.InitProductLog("londoners", "londoners-aws", "test",
		settings.SentryDSN)

	db, err = londoners.NewDB(settings)
	if err != nil {
		londoners.Log.Panicf(`Failed to init DB: "%v".`, err)
	}
}

func handle(*request) (*response, error) {
	if db == nil {
		return nil, errors.New("no db")
	}
	londoners.Log.Info("Starting...")
	londoners.Log.Info("Completed")
	return &response{}, nil
}

func main() {
	defer londoners.Log.Flush()
	aws.Start(handle)
}
