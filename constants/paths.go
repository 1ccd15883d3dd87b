package constants

const (
	DETAIL_SUFFIX     = "_failed_logins.csv"
	STATS_SUFFIX      = "_failed_login_statistics.csv"
	REPORT_SUFFIX     = "_failed_logins.xlsx"
	DAILY_FILENAME    = "logs_per_day.csv"
	CHART_FILENAME    = "logs_per_day.png"
	VT_REPORT_NAME    = "VT.md"
	ABUSEIP_RESULTS   = "AbuseIP_results.csv"
	SECURITY_EVTX_WIN = `C:\Windows\System32\winevt\Logs\Security.evtx`
)

func GetDetailFilename(date string) string {
	return date + DETAIL_SUFFIX
}

func GetStatsFilename(date string) string {
	return date + STATS_SUFFIX
}

func GetReportFilename(date string) string {
	return date + REPORT_SUFFIX
}
