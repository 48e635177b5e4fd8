package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
)

func TestInferTitleHierarchy(t *testing.T) {
	rule := DefaultRules()[0]

	tests := []struct {
		name  string
		ctx   model.Context
		want  string
		found bool
	}{
		{
			name:  "vp reports to ceo",
			ctx:   model.Context{"title": "VP of Engineering"},
			want:  "CEO",
			found: true,
		},
		{
			name:  "vice president spelled out",
			ctx:   model.Context{"title": "Senior Vice President, Sales"},
			want:  "CEO",
			found: true,
		},
		{
			name:  "ceo reports to board",
			ctx:   model.Context{"title": "CEO"},
			want:  "Board of Directors",
			found: true,
		},
		{
			name:  "director with department",
			ctx:   model.Context{"title": "Director of Marketing", "department": "Marketing"},
			want:  "VP of Marketing",
			found: true,
		},
		{
			name:  "director without department",
			ctx:   model.Context{"title": "Director"},
			want:  "Senior Management",
			found: true,
		},
		{
			name:  "manager with department",
			ctx:   model.Context{"title": "Engineering Manager", "department": "Engineering"},
			want:  "Director",
			found: true,
		},
		{
			name:  "lead without department",
			ctx:   model.Context{"title": "Tech Lead"},
			want:  "Management",
			found: true,
		},
		{
			name: "individual contributor",
			ctx:  model.Context{"title": "Software Engineer"},
		},
		{
			name: "leader does not match lead as a whole word",
			ctx:  model.Context{"title": "Team Leader"},
		},
		{
			name: "no title",
			ctx:  model.Context{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inf := inferTitleHierarchy(tt.ctx, rule)
			if !tt.found {
				assert.Nil(t, inf)
				return
			}
			require.NotNil(t, inf)
			assert.Equal(t, "reports_to", inf.Field)
			assert.Equal(t, tt.want, inf.Value)
			assert.Equal(t, 0.95, inf.Confidence)
			assert.NotEmpty(t, inf.Reasoning)
		})
	}
}

func TestInferCompanySizeFromEmployees(t *testing.T) {
	rule := DefaultRules()[1]

	tests := []struct {
		name  string
		count any
		want  string
	}{
		{"startup band", 12, "Startup (1-50 employees)"},
		{"band edge at 50", 50, "Startup (1-50 employees)"},
		{"small band", 75, "Small (51-200 employees)"},
		{"band edge at 200", 200, "Small (51-200 employees)"},
		{"medium band", 500, "Medium (201-1000 employees)"},
		{"large band", 5000, "Large (1000+ employees)"},
		{"numeric string accepted", "75", "Small (51-200 employees)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inf := inferCompanySizeFromEmployees(model.Context{"employee_count": tt.count}, rule)
			require.NotNil(t, inf)
			assert.Equal(t, "company_size", inf.Field)
			assert.Equal(t, tt.want, inf.Value)
			assert.Equal(t, 0.95, inf.Confidence)
		})
	}

	t.Run("zero count produces nothing", func(t *testing.T) {
		assert.Nil(t, inferCompanySizeFromEmployees(model.Context{"employee_count": 0}, rule))
	})
	t.Run("non-numeric count produces nothing", func(t *testing.T) {
		assert.Nil(t, inferCompanySizeFromEmployees(model.Context{"employee_count": "lots"}, rule))
	})
}

func TestInferCompanySizeFromRevenue(t *testing.T) {
	rule := DefaultRules()[2]

	tests := []struct {
		name    string
		revenue any
		want    string
	}{
		{"under a million", 500_000, "Startup (<$1M revenue)"},
		{"one to ten million", 5_000_000, "Small ($1M-$10M revenue)"},
		{"ten to a hundred million", 50_000_000, "Medium ($10M-$100M revenue)"},
		{"over a hundred million", 250_000_000, "Large ($100M+ revenue)"},
		{"formatted string", "$5,000,000", "Small ($1M-$10M revenue)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inf := inferCompanySizeFromRevenue(model.Context{"annual_revenue": tt.revenue}, rule)
			require.NotNil(t, inf)
			assert.Equal(t, tt.want, inf.Value)
			assert.Equal(t, 0.85, inf.Confidence)
		})
	}
}

func TestInferExperienceLevel(t *testing.T) {
	rule := DefaultRules()[3]

	tests := []struct {
		years float64
		want  string
	}{
		{0, "entry"},
		{2, "entry"},
		{3, "mid"},
		{5, "mid"},
		{8, "senior"},
		{10, "senior"},
		{15, "executive"},
	}

	for _, tt := range tests {
		inf := inferExperienceLevel(model.Context{"years_experience": tt.years}, rule)
		require.NotNil(t, inf)
		assert.Equal(t, tt.want, inf.Value, "years=%v", tt.years)
	}
}

func TestInferSalaryRange(t *testing.T) {
	rule := DefaultRules()[4]

	tests := []struct {
		name string
		ctx  model.Context
		want string
	}{
		{
			name: "entry level scales down",
			ctx:  model.Context{"current_salary": 60_000, "experience_level": "entry"},
			want: "Under $50K",
		},
		{
			name: "mid level unchanged",
			ctx:  model.Context{"current_salary": 80_000, "experience_level": "mid"},
			want: "$75K-$100K",
		},
		{
			name: "senior level scales up",
			ctx:  model.Context{"current_salary": 100_000, "experience_level": "senior"},
			want: "$100K-$150K",
		},
		{
			name: "unknown level uses the high multiplier",
			ctx:  model.Context{"current_salary": 110_000, "experience_level": "principal"},
			want: "$150K+",
		},
		{
			name: "level derived from years when absent",
			ctx:  model.Context{"current_salary": 100_000, "years_experience": 8},
			want: "$100K-$150K",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inf := inferSalaryRange(tt.ctx, rule)
			require.NotNil(t, inf)
			assert.Equal(t, "salary_range", inf.Field)
			assert.Equal(t, tt.want, inf.Value)
		})
	}

	t.Run("no current salary means no inference", func(t *testing.T) {
		assert.Nil(t, inferSalaryRange(model.Context{"years_experience": 8}, rule))
	})
}

func TestTitleHasManagementKeyword(t *testing.T) {
	assert.True(t, titleHasManagementKeyword(model.Context{"title": "Product Manager"}))
	assert.True(t, titleHasManagementKeyword(model.Context{"title": "VP, Finance"}))
	assert.False(t, titleHasManagementKeyword(model.Context{"title": "Accountant"}))
	assert.False(t, titleHasManagementKeyword(model.Context{}))
}
