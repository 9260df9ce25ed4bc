package trigger

import "time"

// Canonical event type constants. These follow the CloudEvents reverse
// domain convention already used for this repository's diagnostic
// pass-through (see observer.go), generalized from module lifecycle events
// to trigger-relevant domain events. The engine itself never inspects these
// strings beyond using them as the registry bucket key; they exist here for
// producer/handler convenience.
const (
	EventQualityGatePassed  = "com.triggerengine.quality_gate.passed"
	EventTestFailed         = "com.triggerengine.test.failed"
	EventCostAlert          = "com.triggerengine.cost.alert"
	EventAgentTimeout       = "com.triggerengine.agent.timeout"
	EventWorkflowCompleted  = "com.triggerengine.workflow.completed"
	EventBuildStarted       = "com.triggerengine.build.started"
	EventBuildCompleted     = "com.triggerengine.build.completed"
	EventDeploymentStarted  = "com.triggerengine.deployment.started"
	EventSecurityAlert      = "com.triggerengine.security.alert"
)

// QualityGatePassedPayload carries the result of a project's quality gate
// evaluation. Handlers commonly use this to decide whether to kick off a
// deployment trigger.
type QualityGatePassedPayload struct {
	ProjectID    string            `json:"project_id"`
	CommitSHA    string            `json:"commit_sha"`
	TestsPassed  int               `json:"tests_passed"`
	AllChecks    bool              `json:"all_checks"`
	CheckDetails map[string]string `json:"check_details,omitempty"`
}

// TestFailedPayload describes a single test failure.
type TestFailedPayload struct {
	ProjectID     string `json:"project_id"`
	TestName      string `json:"test_name"`
	ErrorMessage  string `json:"error_message"`
	FailureCount  int    `json:"failure_count"`
	TestFilePath  string `json:"test_file_path"`
	StackTrace    string `json:"stack_trace,omitempty"`
}

// CostAlertPayload reports spend against configured limits.
type CostAlertPayload struct {
	ProjectID      string  `json:"project_id"`
	DailyCost      float64 `json:"daily_cost"`
	MonthlyCost    float64 `json:"monthly_cost"`
	DailyLimit     float64 `json:"daily_limit"`
	MonthlyLimit   float64 `json:"monthly_limit"`
	PercentOfLimit float64 `json:"percent_of_limit"`
	AlertLevel     string  `json:"alert_level"`
}

// AgentTimeoutPayload describes a stalled agent task.
type AgentTimeoutPayload struct {
	AgentID   string `json:"agent_id"`
	TaskID    string `json:"task_id"`
	TaskName  string `json:"task_name"`
	RunningMs int64  `json:"running_ms"`
	TimeoutMs int64  `json:"timeout_ms"`
}

// WorkflowCompletedPayload summarizes a finished multi-agent workflow run.
type WorkflowCompletedPayload struct {
	WorkflowID      string  `json:"workflow_id"`
	ProjectID       string  `json:"project_id"`
	TotalCost       float64 `json:"total_cost"`
	ExecutionTimeMs int64   `json:"execution_time_ms"`
	AgentsUsed      int     `json:"agents_used"`
	Success         bool    `json:"success"`
	OutputPath      string  `json:"output_path,omitempty"`
}

// BuildStartedPayload marks the beginning of a build.
type BuildStartedPayload struct {
	BuildID   string    `json:"build_id"`
	ProjectID string    `json:"project_id"`
	Version   string    `json:"version"`
	StartedAt time.Time `json:"started_at"`
}

// BuildCompletedPayload marks the end of a build.
type BuildCompletedPayload struct {
	BuildID     string        `json:"build_id"`
	ProjectID   string        `json:"project_id"`
	Version     string        `json:"version"`
	Success     bool          `json:"success"`
	Duration    time.Duration `json:"duration"`
	ArtifactURL string        `json:"artifact_url,omitempty"`
}

// DeploymentStartedPayload marks the beginning of a deployment.
type DeploymentStartedPayload struct {
	DeploymentID string `json:"deployment_id"`
	ProjectID    string `json:"project_id"`
	Environment  string `json:"environment"`
	Version      string `json:"version"`
	CommitSHA    string `json:"commit_sha"`
}

// SecurityAlertPayload describes a detected security finding.
type SecurityAlertPayload struct {
	AlertID            string `json:"alert_id"`
	Severity           string `json:"severity"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	AffectedComponent  string `json:"affected_component"`
	CVEID              string `json:"cve_id,omitempty"`
	RemediationSteps   string `json:"remediation_steps,omitempty"`
}
