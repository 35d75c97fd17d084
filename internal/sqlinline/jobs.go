package sqlinline

const QJobInsert = `--sql afb54249-ad6b-4661-b465-12315bdd7689
insert into jobs (id, account_id, app_id, creation_id, recipe_id, status, progress, result, error, credit_cost, created_at, updated_at)
values ($1, $2, $3, nullif($4, ''), nullif($5, ''), $6, $7, nullif($8, ''), nullif($9, ''), $10, $11, $12);
`

const QJobByID = `--sql 67f8092d-cd41-469e-9929-c48f36e949ed
select id, account_id, app_id, coalesce(creation_id, ''), coalesce(recipe_id, ''), status, progress,
       coalesce(result, ''), coalesce(error, ''), credit_cost, created_at, updated_at
from jobs
where id = $1;
`

const QJobByIDForUpdate = `--sql a88f53a5-b549-4b1d-b4aa-3a423e726593
select id, account_id, app_id, coalesce(creation_id, ''), coalesce(recipe_id, ''), status, progress,
       coalesce(result, ''), coalesce(error, ''), credit_cost, created_at, updated_at
from jobs
where id = $1
for update;
`

const QJobUpdate = `--sql 1331c132-9b23-476f-b587-1b00106c004c
update jobs
set status = $2,
    progress = $3,
    result = nullif($4, ''),
    error = nullif($5, ''),
    updated_at = $6
where id = $1;
`

const QJobsByAccount = `--sql 82a68670-353d-44fc-a70e-e61ec677d1eb
select id, account_id, app_id, coalesce(creation_id, ''), coalesce(recipe_id, ''), status, progress,
       coalesce(result, ''), coalesce(error, ''), credit_cost, created_at, updated_at
from jobs
where account_id = $1
order by created_at desc, id desc
limit $2;
`

const QJobsStale = `--sql 7fafbef7-3291-43c1-9ac6-1f4209036c5d
select id, account_id, app_id, coalesce(creation_id, ''), coalesce(recipe_id, ''), status, progress,
       coalesce(result, ''), coalesce(error, ''), credit_cost, created_at, updated_at
from jobs
where status not in ('completed', 'failed')
  and updated_at < $1
order by updated_at asc
limit $2;
`
