// Package lexicon holds the static categorized keyword and pattern tables the
// signal extractor matches against: technologies, urgency phrases, budget
// patterns, pain points, and skills. Leaf package with no dependencies.
package lexicon

import "regexp"

// Version identifies the committed lexicon tables. Every derived record is a
// pure function of posting text plus this version, so bump it whenever a
// table changes.
const Version = "2026.08"

// Technologies lists canonical technology names. Matching is case-insensitive
// and boundary-aware; the canonical casing here is what extraction emits.
var Technologies = []string{
	// Programming languages
	"Python", "Java", "JavaScript", "TypeScript", "Go", "Rust", "C++", "C#",
	"PHP", "Ruby", "Swift", "Kotlin", "Scala", "R", "MATLAB", "Perl", "Dart",
	"Elixir", "Haskell", "Clojure",

	// Frameworks and libraries
	"React", "Angular", "Vue", "Django", "Flask", "FastAPI", "Spring",
	"Express", "Node.js", "Next.js", "Laravel", "Rails", "ASP.NET",
	"TensorFlow", "PyTorch", "Keras", "Scikit-learn", "Pandas", "NumPy",

	// Cloud and infrastructure
	"AWS", "Azure", "GCP", "Google Cloud", "Docker", "Kubernetes",
	"Terraform", "Ansible", "Jenkins", "GitLab CI", "GitHub Actions",
	"CircleCI", "Helm", "Istio", "OpenShift",

	// Databases
	"PostgreSQL", "MySQL", "MongoDB", "Redis", "Elasticsearch", "Cassandra",
	"DynamoDB", "Neo4j", "InfluxDB", "CouchDB", "SQLite", "Oracle",
	"SQL Server", "MariaDB",

	// DevOps and tooling
	"Git", "Linux", "Nginx", "Apache", "Grafana", "Prometheus", "ELK Stack",
	"Splunk", "Datadog", "New Relic", "Jira", "Confluence", "Postman",
	"Swagger",

	// AI/ML and data
	"Machine Learning", "Deep Learning", "NLP", "Computer Vision", "MLOps",
	"Data Science", "Big Data", "Spark", "Hadoop", "Kafka", "Airflow", "dbt",
	"Snowflake", "Databricks",

	// Frontend
	"HTML", "CSS", "SASS", "LESS", "Bootstrap", "Tailwind", "Material-UI",

	// Mobile
	"React Native", "Flutter", "iOS", "Android", "Xamarin",

	// Other
	"Microservices", "REST API", "GraphQL", "gRPC", "Blockchain", "Solidity",
	"Web3",
}

// UrgencyPhrases lists urgent-hiring phrases, longest-first variants before
// their shorter forms so a match consumes the full phrase.
var UrgencyPhrases = []string{
	"start immediately",
	"fill immediately",
	"need someone now",
	"start this week",
	"start monday",
	"hiring now",
	"start now",
	"can you start",
	"high priority",
	"time-sensitive",
	"time sensitive",
	"fast-track",
	"fast track",
	"fast-paced",
	"immediate",
	"urgent",
	"urgently",
	"asap",
	"expedite",
	"rushing",
	"quickly",
}

// PainPoints lists phrases signalling legacy systems, technical debt, and
// modernization pressure. These are the openings a BD team looks for.
var PainPoints = []string{
	"legacy system",
	"legacy code",
	"legacy",
	"technical debt",
	"tech debt",
	"maintenance",
	"refactor",
	"modernize",
	"migration",
	"migrate",
	"migrating",
	"upgrade",
	"replace",
	"old system",
	"outdated",
	"obsolete",
	"deprecated",
	"integration issues",
	"integration challenges",
	"data silos",
	"manual process",
	"inefficient",
	"scalability issues",
	"performance issues",
	"technical challenges",
	"architecture",
	"redesign",
	"revamp",
}

// Skills lists non-technology skills and methodologies. Extraction unions
// these with matched technologies into the skills signal.
var Skills = []string{
	// Technical practice
	"API development", "Database design", "System architecture", "Code review",
	"Testing", "Unit testing", "Integration testing", "Debugging",
	"Performance optimization", "Security", "Scalability", "Monitoring",
	"Logging", "Documentation",

	// Soft skills
	"Leadership", "Communication", "Problem solving", "Team collaboration",
	"Mentoring", "Project management", "Agile", "Scrum", "Kanban", "Planning",
	"Analytical thinking",

	// Domain knowledge
	"Financial services", "Healthcare", "E-commerce", "Gaming", "Education",
	"Marketing", "Sales", "Customer service", "Product management",
	"Business analysis",

	// Methodologies
	"CI/CD", "DevOps", "MLOps", "DataOps", "Automation", "Quality assurance",
	"Code quality", "Best practices", "Design patterns", "SOLID principles",
}

// EquityTerms mark equity compensation mentions in budget extraction.
var EquityTerms = []string{
	"equity", "stock options", "rsu", "rsus", "vesting", "stock grant",
}

// SalaryRangeRe matches currency-prefixed salary amounts and ranges:
// $120k-$150k, $80,000 - $120,000, €60,000, £45k. Partial or malformed
// fragments simply fail to match and are dropped.
var SalaryRangeRe = regexp.MustCompile(`[$€£]\d{1,3}(?:,\d{3})*k?(?:\s*-\s*[$€£]?\d{1,3}(?:,\d{3})*k?)?`)

// HourlyRateRe matches hourly rates: $50/hour, $40-60/hr, £35/hr.
var HourlyRateRe = regexp.MustCompile(`[$€£]\d{1,3}(?:\.\d{2})?(?:\s*-\s*[$€£]?\d{1,3}(?:\.\d{2})?)?\s*/\s*(?:hour|hr)\b`)
