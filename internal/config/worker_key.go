package config

type WorkerKeyStruct struct {
	SessionStatsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	SessionStatsQueue: "session_stats_queue",
}
