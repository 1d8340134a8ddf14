package service

import "github.com/noah-isme/sai-review-api/internal/workflow"

type demoSubmission struct {
	sport        string
	subcategory  string
	videoURI     string
	aiScore      float64
	reviewer     string
	claimOnly    bool
	outcome      workflow.Outcome
	saiScore     float64
	feedback     string
	strengths    []string
	improvements []string
	nextSteps    string
}

type demoAthlete struct {
	fullName    string
	email       string
	phone       string
	dateOfBirth string
	gender      string
	city        string
	state       string
	sport       string
	experience  int
	submissions []demoSubmission
}

const (
	cricketCoach   = "SAI Cricket Coach - Rajesh Mehta"
	badmintonCoach = "SAI Badminton Coach - Meera Krishnan"
	athleticsCoach = "SAI Athletics Coach - Dr. Sunita Rani"
	footballCoach  = "SAI Football Coach - Arun Kumar"
)

func demoAthletes() []demoAthlete {
	return []demoAthlete{
		{
			fullName: "Arjun Kumar", email: "arjun.kumar@example.com", phone: "9876543210",
			dateOfBirth: "2005-03-15", gender: "Male", city: "Mumbai", state: "Maharashtra", sport: "Cricket", experience: 5,
			submissions: []demoSubmission{
				{
					sport: "Cricket", subcategory: "Batting Technique", videoURI: "dummy://cricket_batting_001.mp4", aiScore: 85,
					reviewer: cricketCoach, outcome: workflow.OutcomeApprove, saiScore: 88,
					feedback:     "Excellent batting stance and follow-through. Good timing and technique demonstrated.",
					strengths:    []string{"Proper grip", "Good balance", "Clean hitting"},
					improvements: []string{"Work on back foot shots", "Improve running between wickets"},
					nextSteps:    "Selected for regional coaching camp in Mumbai",
				},
				{
					sport: "Cricket", subcategory: "Bowling Action", videoURI: "dummy://cricket_bowling_001.mp4", aiScore: 62,
					reviewer: cricketCoach, outcome: workflow.OutcomeReject, saiScore: 58,
					feedback:     "Bowling action needs significant improvement. Action appears to have technical flaws.",
					strengths:    []string{"Good pace variation"},
					improvements: []string{"Correct bowling action", "Improve line and length", "Work on fitness"},
					nextSteps:    "Recommended for technique correction coaching",
				},
				{sport: "Cricket", subcategory: "Fielding Skills", videoURI: "dummy://cricket_fielding_001.mp4", aiScore: 78, reviewer: cricketCoach, claimOnly: true},
			},
		},
		{
			fullName: "Priya Sharma", email: "priya.sharma@example.com", phone: "9876543211",
			dateOfBirth: "2004-07-22", gender: "Female", city: "Delhi", state: "Delhi", sport: "Badminton", experience: 3,
			submissions: []demoSubmission{
				{sport: "Badminton", subcategory: "Smash Technique", videoURI: "dummy://badminton_smash_001.mp4", aiScore: 82, reviewer: badmintonCoach, claimOnly: true},
				{sport: "Badminton", subcategory: "Footwork", videoURI: "dummy://badminton_footwork_001.mp4", aiScore: 75},
			},
		},
		{
			fullName: "Rahul Singh", email: "rahul.singh@example.com", phone: "9876543212",
			dateOfBirth: "2003-11-08", gender: "Male", city: "Bangalore", state: "Karnataka", sport: "Athletics", experience: 4,
			submissions: []demoSubmission{
				{
					sport: "Athletics", subcategory: "100m Sprint", videoURI: "dummy://athletics_sprint_001.mp4", aiScore: 92,
					reviewer: athleticsCoach, outcome: workflow.OutcomeApprove, saiScore: 95,
					feedback:     "Outstanding sprint technique! Excellent start and acceleration phase.",
					strengths:    []string{"Perfect starting position", "Excellent acceleration", "Good finishing form"},
					improvements: []string{"Work on maintaining speed in final 20m"},
					nextSteps:    "Selected for National Junior Athletics Camp",
				},
				{
					sport: "Athletics", subcategory: "Long Jump", videoURI: "dummy://athletics_longjump_001.mp4", aiScore: 87,
					reviewer: athleticsCoach, outcome: workflow.OutcomeApprove, saiScore: 85,
					feedback:     "Good jump technique with room for improvement in approach run.",
					strengths:    []string{"Good takeoff technique", "Proper landing form"},
					improvements: []string{"Improve approach run consistency", "Work on takeoff timing"},
					nextSteps:    "Continue training with focus on approach run",
				},
				{
					sport: "Athletics", subcategory: "High Jump", videoURI: "dummy://athletics_highjump_001.mp4", aiScore: 68,
					reviewer: athleticsCoach, outcome: workflow.OutcomeReject, saiScore: 65,
					feedback:     "High jump technique needs significant work. Approach and takeoff both need improvement.",
					strengths:    []string{"Good physical fitness"},
					improvements: []string{"Learn proper Fosbury Flop technique", "Improve approach angle", "Work on takeoff timing"},
					nextSteps:    "Recommended for specialized high jump coaching",
				},
				{sport: "Athletics", subcategory: "Shot Put", videoURI: "dummy://athletics_shotput_001.mp4", aiScore: 71},
			},
		},
		{
			fullName: "Sneha Patel", email: "sneha.patel@example.com", phone: "9876543213",
			dateOfBirth: "2005-05-12", gender: "Female", city: "Ahmedabad", state: "Gujarat", sport: "Swimming", experience: 2,
		},
		{
			fullName: "Vikash Yadav", email: "vikash.yadav@example.com", phone: "9876543214",
			dateOfBirth: "2004-09-30", gender: "Male", city: "Chennai", state: "Tamil Nadu", sport: "Football", experience: 6,
			submissions: []demoSubmission{
				{
					sport: "Football", subcategory: "Ball Control", videoURI: "dummy://football_control_001.mp4", aiScore: 65,
					reviewer: footballCoach, outcome: workflow.OutcomeReject, saiScore: 62,
					feedback:     "Ball control skills need improvement. Touch and first touch both require work.",
					strengths:    []string{"Good enthusiasm", "Decent pace"},
					improvements: []string{"Improve first touch", "Work on close ball control", "Practice juggling"},
					nextSteps:    "Recommended for basic skills development program",
				},
				{sport: "Football", subcategory: "Shooting Accuracy", videoURI: "dummy://football_shooting_001.mp4", aiScore: 73, reviewer: footballCoach, claimOnly: true},
			},
		},
	}
}
