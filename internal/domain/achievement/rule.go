package achievement

// Facts is the student state a rule is evaluated against.
type Facts struct {
	CompletedModuleNumbers map[int]bool
	CompletedModules       int
	CurrentStreak          int
	ExamsPassed            int
	TotalModules           int
}

func (a *Achievement) Satisfied(f Facts) bool {
	switch a.Rule {
	case RuleModuleCompleted:
		return f.CompletedModuleNumbers[a.Threshold]
	case RuleModulesCompleted:
		return f.CompletedModules >= a.Threshold
	case RuleStreak:
		return f.CurrentStreak >= a.Threshold
	case RuleExamsPassed:
		return f.ExamsPassed >= a.Threshold
	case RuleCourseCompleted:
		return f.TotalModules > 0 && f.CompletedModules >= f.TotalModules
	}
	return false
}

func KnownRule(k RuleKind) bool {
	switch k {
	case RuleModuleCompleted, RuleModulesCompleted, RuleStreak, RuleExamsPassed, RuleCourseCompleted:
		return true
	}
	return false
}
